package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/farahadel/connectly/internal/models"
	storage "github.com/farahadel/connectly/pkg/redis"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const aggregateCacheTTL = 10 * time.Minute

// incExpr atomically bumps a counter column.
func incExpr(col string) interface{} {
	return gorm.Expr(col + " + 1")
}

// decExpr atomically lowers a counter column, floored at zero. The column
// name always comes from the closed reaction-kind set or a literal.
func decExpr(col string) interface{} {
	return gorm.Expr(fmt.Sprintf("CASE WHEN %s > 0 THEN %s - 1 ELSE 0 END", col, col))
}

// recomputeLikes rewrites likes_count as the sum of every reaction bucket.
// Running it after each bucket mutation keeps the total equal to the buckets
// even when a clamped decrement was skipped.
func recomputeLikes(tx *gorm.DB, postID uuid.UUID) error {
	return tx.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr(models.BucketSumSQL())).Error
}

// PostAggregateSnapshot reads the committed counter state of a post.
func PostAggregateSnapshot(ctx context.Context, db *gorm.DB, postID uuid.UUID) (*models.PostAggregate, error) {
	var post models.Post
	err := db.WithContext(ctx).
		Select("id", "likes_count", "comments_count",
			"reaction_like", "reaction_love", "reaction_haha",
			"reaction_wow", "reaction_sad", "reaction_angry").
		First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Post not found")
		}
		return nil, utils.WrapError(err, utils.ErrServiceUnavailable.Code, "Failed to read post counters")
	}
	return post.Aggregate(), nil
}

// refreshAggregateCache drops the stale post cache and stores the fresh
// counter snapshot. Cache upkeep is best-effort and never fails the call.
func refreshAggregateCache(ctx context.Context, rclient *storage.RedisClient, agg *models.PostAggregate) {
	if rclient == nil || agg == nil {
		return
	}
	rclient.Del(ctx, "post:"+agg.PostID.String())
	if data, err := json.Marshal(agg); err == nil {
		rclient.Set(ctx, "post_counts:"+agg.PostID.String(), data, aggregateCacheTTL)
	}
}

// UpsertReaction applies one user's reaction to one post and keeps the
// post's buckets and total in step, all inside a single transaction:
//
//   - no prior reaction        -> create the fact, bucket +1
//   - prior with another kind  -> relabel the fact, move one unit between buckets
//   - prior with the same kind -> toggle off: delete the fact, bucket -1
//
// The returned reaction is nil after a toggle-off. likes_count is recomputed
// from the buckets on every path.
func UpsertReaction(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, userID, postID uuid.UUID, kind models.ReactionKind) (*models.Reaction, *models.PostAggregate, error) {
	if !kind.Valid() {
		return nil, nil, utils.NewError(utils.ErrBadRequest.Code, "Invalid reaction type")
	}
	if postID == uuid.Nil || userID == uuid.Nil {
		return nil, nil, utils.NewError(utils.ErrBadRequest.Code, "Invalid request")
	}

	var reaction *models.Reaction
	err := runInTx(ctx, db, func(tx *gorm.DB) error {
		reaction = nil

		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return utils.NewError(utils.ErrNotFound.Code, "Post not found")
		}

		var prev models.Reaction
		err := lockForUpdate(tx).Where("post_id = ? AND user_id = ?", postID, userID).First(&prev).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first reaction from this user
			next := models.Reaction{PostID: postID, UserID: userID, Kind: kind}
			if err := tx.Create(&next).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn(kind.Column(), incExpr(kind.Column())).Error; err != nil {
				return err
			}
			reaction = &next

		case err != nil:
			return err

		case prev.Kind != kind:
			// switch kind: relabel the fact, move one unit between buckets
			old := prev.Kind
			if err := tx.Model(&models.Reaction{}).Where("id = ?", prev.ID).
				UpdateColumn("kind", kind).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumns(map[string]interface{}{
					old.Column():  decExpr(old.Column()),
					kind.Column(): incExpr(kind.Column()),
				}).Error; err != nil {
				return err
			}
			prev.Kind = kind
			reaction = &prev

		default:
			// same kind again: toggle off
			if err := tx.Delete(&models.Reaction{}, "id = ?", prev.ID).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn(kind.Column(), decExpr(kind.Column())).Error; err != nil {
				return err
			}
		}

		return recomputeLikes(tx, postID)
	})
	if err != nil {
		return nil, nil, err
	}

	agg, err := PostAggregateSnapshot(ctx, db, postID)
	if err != nil {
		return nil, nil, err
	}
	refreshAggregateCache(ctx, rclient, agg)
	return reaction, agg, nil
}

// RemoveReaction deletes the caller's reaction fact if present and lowers
// the matching bucket and total. A missing fact is not an error; the
// unchanged aggregate is returned.
func RemoveReaction(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, userID, postID uuid.UUID) (*models.PostAggregate, error) {
	if postID == uuid.Nil || userID == uuid.Nil {
		return nil, utils.NewError(utils.ErrBadRequest.Code, "Invalid request")
	}

	removed := false
	err := runInTx(ctx, db, func(tx *gorm.DB) error {
		removed = false

		var prev models.Reaction
		err := lockForUpdate(tx).Where("post_id = ? AND user_id = ?", postID, userID).First(&prev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&models.Reaction{}, "id = ?", prev.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn(prev.Kind.Column(), decExpr(prev.Kind.Column())).Error; err != nil {
			return err
		}
		removed = true
		return recomputeLikes(tx, postID)
	})
	if err != nil {
		return nil, err
	}

	agg, err := PostAggregateSnapshot(ctx, db, postID)
	if err != nil {
		return nil, err
	}
	if removed {
		refreshAggregateCache(ctx, rclient, agg)
	}
	return agg, nil
}

// ReactionOf returns the caller's current reaction to a post, nil when none.
func ReactionOf(ctx context.Context, db *gorm.DB, userID, postID uuid.UUID) (*models.Reaction, error) {
	var reaction models.Reaction
	err := db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).First(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrServiceUnavailable.Code, "Failed to read reaction")
	}
	return &reaction, nil
}
