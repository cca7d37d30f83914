package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReactionCounts holds the denormalized per-kind buckets on a post.
type ReactionCounts struct {
	Like  int `gorm:"default:0" json:"like"`
	Love  int `gorm:"default:0" json:"love"`
	Haha  int `gorm:"default:0" json:"haha"`
	Wow   int `gorm:"default:0" json:"wow"`
	Sad   int `gorm:"default:0" json:"sad"`
	Angry int `gorm:"default:0" json:"angry"`
}

// Bucket returns the count for a single kind.
func (rc ReactionCounts) Bucket(kind ReactionKind) int {
	switch kind {
	case KindLike:
		return rc.Like
	case KindLove:
		return rc.Love
	case KindHaha:
		return rc.Haha
	case KindWow:
		return rc.Wow
	case KindSad:
		return rc.Sad
	case KindAngry:
		return rc.Angry
	}
	return 0
}

// Sum returns the total across all buckets.
func (rc ReactionCounts) Sum() int {
	return rc.Like + rc.Love + rc.Haha + rc.Wow + rc.Sad + rc.Angry
}

type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:idx_post_author" json:"author_id" validate:"required"`
	Content  string    `gorm:"type:text;not null" json:"content" validate:"required,min=1,max=5000"`
	MediaURL string    `gorm:"size:500" json:"media_url,omitempty" validate:"omitempty,url,max=500"`

	// Aggregate fields, derived entirely from the reaction and comment facts.
	Reactions     ReactionCounts `gorm:"embedded;embeddedPrefix:reaction_" json:"reactions"`
	LikesCount    int            `gorm:"default:0" json:"likes_count" validate:"min=0"`
	CommentsCount int            `gorm:"default:0" json:"comments_count" validate:"min=0"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"author,omitempty" validate:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PostAggregate is the counter snapshot handed back after every engine commit.
type PostAggregate struct {
	PostID        uuid.UUID      `json:"post_id"`
	Reactions     ReactionCounts `json:"reactions"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
}

// Aggregate projects the counter fields of a post.
func (p *Post) Aggregate() *PostAggregate {
	return &PostAggregate{
		PostID:        p.ID,
		Reactions:     p.Reactions,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
	}
}
