package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/docstore"
	"github.com/aurevo/aurevo-server/internal/logger"
	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
	"github.com/aurevo/aurevo-server/internal/types"
)

const (
	feedPageSize    = 50
	commentPageSize = 200
)

// SocialStore owns the community feed: posts, threaded comments, and
// toggled likes/reactions. Unlike the per-user stores, the feed is a
// shared collection; LoadFeed fetches everyone's posts, while mutations
// still act as the owning user.
type SocialStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	notify  *NotificationCenter
	ownerID uuid.UUID

	posts    []types.Post
	comments map[uuid.UUID][]types.Comment
}

func NewSocialStore(docs docstore.Store, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID) *SocialStore {
	return &SocialStore{
		log:      baseLog.With("store", "SocialStore"),
		docs:     docs,
		notify:   notify,
		ownerID:  ownerID,
		comments: make(map[uuid.UUID][]types.Comment),
	}
}

// CreatePost publishes to the shared feed; the post lands locally only
// after the remote create succeeds.
func (s *SocialStore) CreatePost(ctx context.Context, content string, mediaURLs, tags []string) (*types.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(mediaURLs) == 0 {
		return nil, fmt.Errorf("%w: post needs content or media", apperrors.ErrInvalidArgument)
	}

	fields, err := docstore.Encode(types.Post{
		OwnerID:   s.ownerID,
		Content:   content,
		MediaURLs: mediaURLs,
		Tags:      tags,
		Likes:     []uuid.UUID{},
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionPosts, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Post create failed", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return nil, fmt.Errorf("create post: %w", err)
	}

	var post types.Post
	if err := docstore.Decode(*doc, &post); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.posts = append([]types.Post{post}, s.posts...)
	s.mu.Unlock()
	return &post, nil
}

// ToggleLike adds or removes the current user's like; repeated calls
// flip it. Returns the post with liked reporting the new state.
func (s *SocialStore) ToggleLike(ctx context.Context, postID uuid.UUID) (*types.Post, bool, SyncResult, error) {
	s.mu.Lock()
	idx := s.postIndexLocked(postID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, false, SyncResult{}, fmt.Errorf("%w: post %s", apperrors.ErrNotFound, postID)
	}
	post := s.posts[idx]
	liked := !containsUUID(post.Likes, s.ownerID)
	if liked {
		post.Likes = append(append([]uuid.UUID(nil), post.Likes...), s.ownerID)
	} else {
		post.Likes = removeUUID(post.Likes, s.ownerID)
	}
	s.posts[idx] = post
	s.mu.Unlock()

	result := s.writeBackPost(ctx, post)
	out := post
	return &out, liked, result, nil
}

// SetPinned pins or unpins one of the user's own posts.
func (s *SocialStore) SetPinned(ctx context.Context, postID uuid.UUID, pinned bool) (*types.Post, SyncResult, error) {
	s.mu.Lock()
	idx := s.postIndexLocked(postID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: post %s", apperrors.ErrNotFound, postID)
	}
	if s.posts[idx].OwnerID != s.ownerID {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: only the author can pin a post", apperrors.ErrUnauthorized)
	}
	s.posts[idx].Pinned = pinned
	post := s.posts[idx]
	s.mu.Unlock()

	result := s.writeBackPost(ctx, post)
	out := post
	return &out, result, nil
}

// DeletePost removes one of the user's own posts, locally first.
func (s *SocialStore) DeletePost(ctx context.Context, postID uuid.UUID) (SyncResult, error) {
	s.mu.Lock()
	idx := s.postIndexLocked(postID)
	if idx < 0 {
		s.mu.Unlock()
		return SyncResult{}, fmt.Errorf("%w: post %s", apperrors.ErrNotFound, postID)
	}
	if s.posts[idx].OwnerID != s.ownerID {
		s.mu.Unlock()
		return SyncResult{}, fmt.Errorf("%w: only the author can delete a post", apperrors.ErrUnauthorized)
	}
	s.posts = append(s.posts[:idx], s.posts[idx+1:]...)
	delete(s.comments, postID)
	s.mu.Unlock()

	if err := s.docs.Delete(ctx, CollectionPosts, postID); err != nil {
		s.log.Warn("Post delete failed remotely", "owner_id", s.ownerID, "post_id", postID, "error", err)
		s.notifyWriteFailure()
		return failedLocalAhead(err), nil
	}
	return committed(), nil
}

// AddComment appends to a post's thread; parentID nests it under an
// existing comment.
func (s *SocialStore) AddComment(ctx context.Context, postID uuid.UUID, parentID *uuid.UUID, content string) (*types.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", apperrors.ErrInvalidArgument)
	}

	s.mu.Lock()
	if s.postIndexLocked(postID) < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: post %s", apperrors.ErrNotFound, postID)
	}
	if parentID != nil && s.commentIndexLocked(postID, *parentID) < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: parent comment %s", apperrors.ErrNotFound, *parentID)
	}
	s.mu.Unlock()

	fields, err := docstore.Encode(types.Comment{
		OwnerID:   s.ownerID,
		PostID:    postID,
		ParentID:  parentID,
		Content:   content,
		Reactions: []string{},
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionComments, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Comment create failed", "owner_id", s.ownerID, "post_id", postID, "error", err)
		s.notifyWriteFailure()
		return nil, fmt.Errorf("create comment: %w", err)
	}

	var comment types.Comment
	if err := docstore.Decode(*doc, &comment); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.comments[postID] = append(s.comments[postID], comment)
	s.mu.Unlock()
	return &comment, nil
}

// ToggleReaction flips the "type:userID" composite key on a comment, so
// each user holds at most one reaction of each type.
func (s *SocialStore) ToggleReaction(ctx context.Context, postID, commentID uuid.UUID, reaction string) (*types.Comment, bool, SyncResult, error) {
	reaction = strings.TrimSpace(reaction)
	if reaction == "" || strings.Contains(reaction, ":") {
		return nil, false, SyncResult{}, fmt.Errorf("%w: invalid reaction type %q", apperrors.ErrInvalidArgument, reaction)
	}
	key := reaction + ":" + s.ownerID.String()

	s.mu.Lock()
	idx := s.commentIndexLocked(postID, commentID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, false, SyncResult{}, fmt.Errorf("%w: comment %s", apperrors.ErrNotFound, commentID)
	}
	comment := s.comments[postID][idx]
	added := true
	next := make([]string, 0, len(comment.Reactions)+1)
	for _, r := range comment.Reactions {
		if r == key {
			added = false
			continue
		}
		next = append(next, r)
	}
	if added {
		next = append(next, key)
	}
	comment.Reactions = next
	s.comments[postID][idx] = comment
	s.mu.Unlock()

	fields, err := docstore.Encode(comment)
	if err != nil {
		return nil, false, SyncResult{}, err
	}
	result := committed()
	if err := s.docs.Update(ctx, CollectionComments, comment.ID, fields); err != nil {
		s.log.Warn("Reaction sync failed, local state is ahead", "owner_id", s.ownerID, "comment_id", comment.ID, "error", err)
		s.notifyWriteFailure()
		result = failedLocalAhead(err)
	}

	out := comment
	return &out, added, result, nil
}

// LoadFeed fetches the shared feed, newest first, plus each post's
// comment thread. Passing uuid.Nil as the owner scopes nothing, so the
// query spans all users.
func (s *SocialStore) LoadFeed(ctx context.Context) ([]types.Post, error) {
	postDocs, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionPosts,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      feedPageSize,
	})
	if err != nil {
		s.mu.Lock()
		s.posts = nil
		s.comments = make(map[uuid.UUID][]types.Comment)
		s.mu.Unlock()
		s.log.Warn("Feed load failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Feed unavailable",
			Message: "Could not load the community feed right now.",
		})
		return nil, fmt.Errorf("load feed: %w", err)
	}

	posts := make([]types.Post, 0, len(postDocs))
	comments := make(map[uuid.UUID][]types.Comment, len(postDocs))
	for _, d := range postDocs {
		var p types.Post
		if err := docstore.Decode(d, &p); err != nil {
			return nil, err
		}
		posts = append(posts, p)

		thread, err := s.loadThread(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		comments[p.ID] = thread
	}

	// Pinned posts float to the top of the local snapshot.
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Pinned && !posts[j].Pinned
	})

	s.mu.Lock()
	s.posts = posts
	s.comments = comments
	s.mu.Unlock()
	return posts, nil
}

func (s *SocialStore) loadThread(ctx context.Context, postID uuid.UUID) ([]types.Comment, error) {
	docs, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionComments,
		Filters:    []docstore.Filter{{Field: "post_id", Value: postID.String()}},
		OrderBy:    "created_at",
		Limit:      commentPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("load comments for post %s: %w", postID, err)
	}
	thread := make([]types.Comment, 0, len(docs))
	for _, d := range docs {
		var c types.Comment
		if err := docstore.Decode(d, &c); err != nil {
			return nil, err
		}
		thread = append(thread, c)
	}
	return thread, nil
}

// Feed returns the local post snapshot.
func (s *SocialStore) Feed() []types.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Post(nil), s.posts...)
}

// Comments returns a post's thread in creation order.
func (s *SocialStore) Comments(postID uuid.UUID) []types.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Comment(nil), s.comments[postID]...)
}

func (s *SocialStore) postIndexLocked(postID uuid.UUID) int {
	for i := range s.posts {
		if s.posts[i].ID == postID {
			return i
		}
	}
	return -1
}

func (s *SocialStore) commentIndexLocked(postID, commentID uuid.UUID) int {
	for i := range s.comments[postID] {
		if s.comments[postID][i].ID == commentID {
			return i
		}
	}
	return -1
}

func (s *SocialStore) writeBackPost(ctx context.Context, post types.Post) SyncResult {
	fields, err := docstore.Encode(post)
	if err != nil {
		return failedLocalAhead(err)
	}
	if err := s.docs.Update(ctx, CollectionPosts, post.ID, fields); err != nil {
		s.log.Warn("Post sync failed, local state is ahead", "owner_id", s.ownerID, "post_id", post.ID, "error", err)
		s.notifyWriteFailure()
		return failedLocalAhead(err)
	}
	return committed()
}

func (s *SocialStore) notifyWriteFailure() {
	s.notify.Push(types.Notification{
		Type:    types.NotifySystem,
		Title:   "Could not sync the feed",
		Message: "Your latest change is kept locally and may not be synced.",
	})
}
