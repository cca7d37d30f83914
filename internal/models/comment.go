package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is the fact record of one comment. Deletion is a hard delete;
// the parent post's comments_count must always match the surviving rows.
type Comment struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_post" json:"post_id" validate:"required"`
	AuthorID uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_author" json:"author_id" validate:"required"`
	Content  string     `gorm:"type:text;not null" json:"content" validate:"required,min=1,max=1000"`
	MediaURL string     `gorm:"size:500" json:"media_url,omitempty" validate:"omitempty,url,max=500"`
	ParentID *uuid.UUID `gorm:"type:uuid;index:idx_comment_parent" json:"parent_id,omitempty" validate:"omitempty"`

	LikesCount int `gorm:"default:0" json:"likes_count" validate:"min=0"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author User     `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"author,omitempty" validate:"-"`
	Post   Post     `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"post,omitempty" validate:"-"`
	Parent *Comment `gorm:"foreignKey:ParentID" json:"parent,omitempty" validate:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
