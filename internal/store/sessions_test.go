package store

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
)

func newSessionEnv(t *testing.T) (*testEnv, *SessionStore) {
	t.Helper()
	env := newTestEnv(t)
	if _, err := env.profile.Load(context.Background()); err != nil {
		t.Fatalf("profile load: %v", err)
	}
	sessions := NewSessionStore(env.docs, env.profile, env.notify, env.log, env.ownerID)
	sessions.tick = time.Millisecond
	t.Cleanup(func() { _ = sessions.StopFocus() })
	return env, sessions
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSessionRecordPaysBlockXP(t *testing.T) {
	env, sessions := newSessionEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)

	if _, err := sessions.Record(ctx, "math", nil, 0, start, start); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("zero duration: want ErrInvalidArgument, got %v", err)
	}

	base := env.profile.Profile().XP
	session, err := sessions.Record(ctx, "math", nil, 52, start, start.Add(52*time.Minute))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !session.Completed {
		t.Fatalf("recorded session must be completed")
	}
	// 52 minutes rounds down to ten 5-minute blocks.
	if got := env.profile.Profile().XP - base; got != 50 {
		t.Fatalf("session xp: want=50 got=%d", got)
	}

	// A 4-minute session records but pays nothing.
	if _, err := sessions.Record(ctx, "math", nil, 4, start, start.Add(4*time.Minute)); err != nil {
		t.Fatalf("short record: %v", err)
	}
	if got := env.profile.Profile().XP - base; got != 50 {
		t.Fatalf("xp after short session: want=50 got=%d", got)
	}
	if got := len(sessions.Sessions()); got != 2 {
		t.Fatalf("sessions: want=2 got=%d", got)
	}
}

func TestSessionRecordFailureNotifies(t *testing.T) {
	env, sessions := newSessionEnv(t)
	ctx := context.Background()
	start := time.Now().UTC()

	env.docs.FailCreates = errors.New("backend down")
	if _, err := sessions.Record(ctx, "math", nil, 25, start, start.Add(25*time.Minute)); err == nil {
		t.Fatalf("record should surface the write error")
	}
	if got := len(sessions.Sessions()); got != 0 {
		t.Fatalf("local sessions after failed write: want=0 got=%d", got)
	}
	if got := countByType(env.notify, "system"); got != 1 {
		t.Fatalf("system notifications: want=1 got=%d", got)
	}
}

func TestFocusSingleTimer(t *testing.T) {
	_, sessions := newSessionEnv(t)

	if err := sessions.StartFocus("math", nil, 3600); err != nil {
		t.Fatalf("start: %v", err)
	}
	state := sessions.FocusState()
	if !state.Active || !state.Running {
		t.Fatalf("state after start: %+v", state)
	}
	if state.PlannedSec != 3600 {
		t.Fatalf("planned: want=3600 got=%d", state.PlannedSec)
	}

	// Starting again replaces the old countdown wholesale.
	if err := sessions.StartFocus("history", nil, 600); err != nil {
		t.Fatalf("restart: %v", err)
	}
	state = sessions.FocusState()
	if state.Subject != "history" || state.PlannedSec != 600 {
		t.Fatalf("state after restart: %+v", state)
	}
	waitFor(t, func() bool { return sessions.FocusState().RemainingSec < 600 }, "second timer to tick")
}

func TestFocusPauseResumeStop(t *testing.T) {
	_, sessions := newSessionEnv(t)

	if err := sessions.PauseFocus(); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("pause with no session: want ErrNotFound, got %v", err)
	}

	if err := sessions.StartFocus("math", nil, 3600); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return sessions.FocusState().RemainingSec < 3600 }, "timer to tick")

	if err := sessions.PauseFocus(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	state := sessions.FocusState()
	if !state.Active || state.Running {
		t.Fatalf("state after pause: %+v", state)
	}
	frozen := state.RemainingSec
	time.Sleep(20 * time.Millisecond)
	if got := sessions.FocusState().RemainingSec; got != frozen {
		t.Fatalf("remaining moved while paused: want=%d got=%d", frozen, got)
	}

	if err := sessions.ResumeFocus(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	waitFor(t, func() bool { return sessions.FocusState().RemainingSec < frozen }, "timer to resume")

	if err := sessions.StopFocus(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if state := sessions.FocusState(); state.Active {
		t.Fatalf("state after stop: %+v", state)
	}
	// Stopping records nothing.
	if got := len(sessions.Sessions()); got != 0 {
		t.Fatalf("sessions after stop: want=0 got=%d", got)
	}
}

func TestFocusExpiryRecordsSession(t *testing.T) {
	env, sessions := newSessionEnv(t)

	base := env.profile.Profile().XP
	if err := sessions.StartFocus("spanish", nil, 2); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return len(sessions.Sessions()) == 1 }, "session to be recorded")

	if state := sessions.FocusState(); state.Active {
		t.Fatalf("timer should be gone after expiry: %+v", state)
	}
	session := sessions.Sessions()[0]
	if session.Subject != "spanish" {
		t.Fatalf("subject: want %q got %q", "spanish", session.Subject)
	}
	// A 2-second plan still records a 1-minute session; under 5 minutes
	// pays no XP.
	if session.DurationMin != 1 {
		t.Fatalf("duration: want=1 got=%d", session.DurationMin)
	}
	if got := env.profile.Profile().XP - base; got != 0 {
		t.Fatalf("xp: want=0 got=%d", got)
	}
	if got := countByType(env.notify, "celebration"); got != 1 {
		t.Fatalf("celebration notifications: want=1 got=%d", got)
	}
}
