package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReactionKind is the closed set of reactions a user can leave on a post.
type ReactionKind string

const (
	KindLike  ReactionKind = "like"
	KindLove  ReactionKind = "love"
	KindHaha  ReactionKind = "haha"
	KindWow   ReactionKind = "wow"
	KindSad   ReactionKind = "sad"
	KindAngry ReactionKind = "angry"
)

// ReactionKinds returns every allowed kind, in bucket order.
func ReactionKinds() []ReactionKind {
	return []ReactionKind{KindLike, KindLove, KindHaha, KindWow, KindSad, KindAngry}
}

// Valid reports whether k belongs to the allowed set.
func (k ReactionKind) Valid() bool {
	switch k {
	case KindLike, KindLove, KindHaha, KindWow, KindSad, KindAngry:
		return true
	}
	return false
}

// Column returns the counter column on posts backing this kind's bucket.
// Only callable for members of the closed set, so it is safe to splice
// into SQL expressions.
func (k ReactionKind) Column() string {
	return "reaction_" + string(k)
}

// BucketSumSQL is the SQL expression summing every reaction bucket.
func BucketSumSQL() string {
	cols := make([]string, 0, len(ReactionKinds()))
	for _, k := range ReactionKinds() {
		cols = append(cols, k.Column())
	}
	return strings.Join(cols, " + ")
}

// Reaction is the fact record of one user's reaction to one post. The
// composite unique index keeps at most one row per (post, user); toggling
// off hard-deletes the row, so there is no soft-delete column.
type Reaction struct {
	ID     uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_post_user,priority:1" json:"post_id" validate:"required"`
	UserID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_post_user,priority:2;index:idx_reaction_user" json:"user_id" validate:"required"`
	Kind   ReactionKind `gorm:"size:20;not null" json:"kind" validate:"required,oneof=like love haha wow sad angry"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty" validate:"-"`
	Post Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"post,omitempty" validate:"-"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
