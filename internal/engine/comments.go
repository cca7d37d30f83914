package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/farahadel/connectly/internal/models"
	storage "github.com/farahadel/connectly/pkg/redis"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultCommentLimit = 20
	maxCommentLimit     = 100
)

// Pagination describes one page of a comment listing.
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalComments int64 `json:"totalComments"`
	HasNext       bool  `json:"hasNext"`
	HasPrev       bool  `json:"hasPrev"`
}

// authorProjection limits the preloaded author to its public fields.
func authorProjection(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar_url")
}

// CreateComment inserts the comment fact and bumps the parent post's
// comments_count in the same transaction. A parent id, when given, must
// reference an existing comment on the same post.
func CreateComment(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, postID, userID uuid.UUID, content, mediaURL string, parentID *uuid.UUID) (*models.Comment, int, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, 0, utils.NewError(utils.ErrBadRequest.Code, "Comment content is required")
	}
	if postID == uuid.Nil || userID == uuid.Nil {
		return nil, 0, utils.NewError(utils.ErrBadRequest.Code, "Invalid request")
	}

	var comment models.Comment
	err := runInTx(ctx, db, func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return utils.NewError(utils.ErrNotFound.Code, "Post not found")
		}

		if parentID != nil {
			var parents int64
			if err := tx.Model(&models.Comment{}).
				Where("id = ? AND post_id = ?", *parentID, postID).
				Count(&parents).Error; err != nil {
				return err
			}
			if parents == 0 {
				return utils.NewError(utils.ErrNotFound.Code, "Parent comment not found")
			}
		}

		comment = models.Comment{
			PostID:   postID,
			AuthorID: userID,
			Content:  content,
			MediaURL: mediaURL,
			ParentID: parentID,
		}
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comments_count", incExpr("comments_count")).Error
	})
	if err != nil {
		return nil, 0, err
	}

	agg, err := PostAggregateSnapshot(ctx, db, postID)
	if err != nil {
		return nil, 0, err
	}
	refreshAggregateCache(ctx, rclient, agg)

	// reload with the author attached for the client
	var created models.Comment
	if err := db.WithContext(ctx).Preload("Author", authorProjection).
		First(&created, "id = ?", comment.ID).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrServiceUnavailable.Code, "Failed to load created comment")
	}
	return &created, agg.CommentsCount, nil
}

// DeleteComment removes the comment fact and lowers comments_count, floored
// at zero. Only the author may delete; any other caller gets a definite
// NotFound and no counter is touched.
func DeleteComment(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, commentID, userID uuid.UUID) (uuid.UUID, int, error) {
	if commentID == uuid.Nil || userID == uuid.Nil {
		return uuid.Nil, 0, utils.NewError(utils.ErrBadRequest.Code, "Invalid request")
	}

	var postID uuid.UUID
	err := runInTx(ctx, db, func(tx *gorm.DB) error {
		var comment models.Comment
		err := lockForUpdate(tx).Where("id = ? AND author_id = ?", commentID, userID).First(&comment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		if err != nil {
			return err
		}
		postID = comment.PostID

		if err := tx.Delete(&models.Comment{}, "id = ?", comment.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comments_count", decExpr("comments_count")).Error
	})
	if err != nil {
		return uuid.Nil, 0, err
	}

	agg, err := PostAggregateSnapshot(ctx, db, postID)
	if err != nil {
		return uuid.Nil, 0, err
	}
	refreshAggregateCache(ctx, rclient, agg)
	return postID, agg.CommentsCount, nil
}

// UpdateComment rewrites the comment body. Author-only, like delete.
func UpdateComment(ctx context.Context, db *gorm.DB, commentID, userID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Comment content is required")
	}

	res := db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND author_id = ?", commentID, userID).
		Update("content", content)
	if res.Error != nil {
		return nil, utils.WrapError(res.Error, utils.ErrServiceUnavailable.Code, "Failed to update comment")
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewError(utils.ErrNotFound.Code, "Comment not found")
	}

	var updated models.Comment
	if err := db.WithContext(ctx).Preload("Author", authorProjection).
		First(&updated, "id = ?", commentID).Error; err != nil {
		return nil, utils.WrapError(err, utils.ErrServiceUnavailable.Code, "Failed to load updated comment")
	}
	return &updated, nil
}

// ListComments returns one newest-first page of a post's comments. Plain
// read, no transaction.
func ListComments(ctx context.Context, db *gorm.DB, postID uuid.UUID, page, limit int) ([]models.Comment, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultCommentLimit
	}
	if limit > maxCommentLimit {
		limit = maxCommentLimit
	}

	var total int64
	if err := db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, nil, utils.WrapError(err, utils.ErrServiceUnavailable.Code, "Failed to count comments")
	}

	offset := (page - 1) * limit
	var comments []models.Comment
	if err := db.WithContext(ctx).Where("post_id = ?", postID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Preload("Author", authorProjection).
		Find(&comments).Error; err != nil {
		return nil, nil, utils.WrapError(err, utils.ErrServiceUnavailable.Code, "Failed to fetch comments")
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	pagination := &Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalComments: total,
		HasNext:       int64(offset+len(comments)) < total,
		HasPrev:       page > 1,
	}
	return comments, pagination, nil
}
