package types

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Content   string      `json:"content"`
	MediaURLs []string    `json:"media_urls"`
	Tags      []string    `json:"tags"`
	Likes     []uuid.UUID `json:"likes"` // user ids, set semantics
	Pinned    bool        `json:"pinned"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Comment threads through ParentID; top-level comments have none.
// Reactions are "reactionType:userID" composite keys with set semantics.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	PostID    uuid.UUID  `json:"post_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Content   string     `json:"content"`
	Reactions []string   `json:"reactions"`
	CreatedAt time.Time  `json:"created_at"`
}
