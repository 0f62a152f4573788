package store

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
)

func newMoodEnv(t *testing.T) (*testEnv, *MoodStore, *time.Time) {
	t.Helper()
	env := newTestEnv(t)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	env.setClock(&now)
	mood := NewMoodStore(env.docs, env.profile, env.notify, env.log, env.ownerID)
	mood.now = func() time.Time { return now }
	return env, mood, &now
}

func TestMoodLogValidation(t *testing.T) {
	_, mood, _ := newMoodEnv(t)
	cases := []MoodInput{
		{Mood: 0, Intensity: 3},
		{Mood: 6, Intensity: 3},
		{Mood: 3, Intensity: 0},
		{Mood: 3, Intensity: 9},
	}
	for _, in := range cases {
		if _, err := mood.Log(context.Background(), in); !errors.Is(err, apperrors.ErrInvalidArgument) {
			t.Fatalf("input %+v: want ErrInvalidArgument got=%v", in, err)
		}
	}
}

func TestMoodCooldownWindow(t *testing.T) {
	env, mood, now := newMoodEnv(t)
	ctx := context.Background()

	if _, err := mood.Log(ctx, MoodInput{Mood: 4, Intensity: 3}); err != nil {
		t.Fatalf("first log: %v", err)
	}

	// 59 minutes later: rejected, one minute remaining.
	*now = now.Add(59 * time.Minute)
	_, err := mood.Log(ctx, MoodInput{Mood: 2, Intensity: 2})
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("want CooldownError got=%v", err)
	}
	if got := cooldown.RemainingMinutes(); got != 1 {
		t.Fatalf("remaining minutes: want=1 got=%d", got)
	}
	if !errors.Is(err, apperrors.ErrCooldown) {
		t.Fatalf("CooldownError must unwrap to ErrCooldown")
	}

	// 61 minutes after the first: accepted.
	*now = now.Add(2 * time.Minute)
	if _, err := mood.Log(ctx, MoodInput{Mood: 5, Intensity: 4}); err != nil {
		t.Fatalf("log after cooldown: %v", err)
	}
	if got := len(mood.Logs()); got != 2 {
		t.Fatalf("logs: want=2 got=%d", got)
	}
	_ = env
}

func TestMoodCooldownRoundsUpToWholeMinutes(t *testing.T) {
	e := &CooldownError{Remaining: 30*time.Minute + time.Second}
	if got := e.RemainingMinutes(); got != 31 {
		t.Fatalf("want=31 got=%d", got)
	}
	e = &CooldownError{Remaining: 5 * time.Second}
	if got := e.RemainingMinutes(); got != 1 {
		t.Fatalf("sub-minute waits report one minute, got=%d", got)
	}
}

func TestMoodCooldownChecksRemoteWhenLocalEmpty(t *testing.T) {
	env, mood, now := newMoodEnv(t)
	ctx := context.Background()

	// Another session wrote a mood 10 minutes ago; this store has no local
	// state but must still respect the cooldown via the remote read.
	other := NewMoodStore(env.docs, env.profile, env.notify, env.log, env.ownerID)
	other.now = func() time.Time { return *now }
	if _, err := other.Log(ctx, MoodInput{Mood: 3, Intensity: 3}); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	*now = now.Add(10 * time.Minute)

	_, err := mood.Log(ctx, MoodInput{Mood: 4, Intensity: 2})
	var cooldown *CooldownError
	if !errors.As(err, &cooldown) {
		t.Fatalf("want CooldownError got=%v", err)
	}
	if got := cooldown.RemainingMinutes(); got != 50 {
		t.Fatalf("remaining: want=50 got=%d", got)
	}
}

func TestMoodCooldownRemoteReadFailureRejects(t *testing.T) {
	env, mood, _ := newMoodEnv(t)
	env.docs.FailQueries = errors.New("remote unavailable")
	if _, err := mood.Log(context.Background(), MoodInput{Mood: 3, Intensity: 3}); err == nil {
		t.Fatalf("unverifiable cooldown must reject the log")
	}
}

func TestMoodLogAwardsXPAndStreak(t *testing.T) {
	env, mood, _ := newMoodEnv(t)
	ctx := context.Background()
	if _, err := env.profile.Load(ctx); err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if _, err := mood.Log(ctx, MoodInput{Mood: 4, Intensity: 3}); err != nil {
		t.Fatalf("log: %v", err)
	}
	p := env.profile.Profile()
	if p.XP != XPMoodLogged {
		t.Fatalf("xp: want=%d got=%d", XPMoodLogged, p.XP)
	}
	if p.Streaks["mood"] != 1 {
		t.Fatalf("mood streak: want=1 got=%d", p.Streaks["mood"])
	}
}

func TestMoodLoadFailureResetsLocalState(t *testing.T) {
	env, mood, _ := newMoodEnv(t)
	ctx := context.Background()
	if _, err := mood.Log(ctx, MoodInput{Mood: 4, Intensity: 3}); err != nil {
		t.Fatalf("log: %v", err)
	}
	env.docs.FailQueries = errors.New("remote unavailable")
	if _, err := mood.Load(ctx); err == nil {
		t.Fatalf("load should fail")
	}
	if got := len(mood.Logs()); got != 0 {
		t.Fatalf("stale logs survived failed load: %d", got)
	}
	if got := countByType(env.notify, "system"); got == 0 {
		t.Fatalf("expected degraded-data notification")
	}
}

func TestJournalEntryAwardsXPWithoutCooldown(t *testing.T) {
	env, mood, _ := newMoodEnv(t)
	ctx := context.Background()
	if _, err := env.profile.Load(ctx); err != nil {
		t.Fatalf("load profile: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := mood.AddJournal(ctx, "day", "wrote some thoughts", nil); err != nil {
			t.Fatalf("journal %d: %v", i, err)
		}
	}
	if got := env.profile.Profile().XP; got != 3*XPJournalEntry {
		t.Fatalf("xp: want=%d got=%d", 3*XPJournalEntry, got)
	}
	if got := len(mood.Journal()); got != 3 {
		t.Fatalf("journal entries: want=3 got=%d", got)
	}
}
