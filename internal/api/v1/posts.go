package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/farahadel/connectly/internal/auth"
	"github.com/farahadel/connectly/internal/models"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const postCacheTTL = 10 * time.Minute

// CreatePost handles POST /posts.
func CreatePost(c *fiber.Ctx) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return utils.SendError(c, utils.ErrUnauthorized)
	}

	type PostInput struct {
		Content string `json:"content" validate:"required,min=1,max=5000"`
		Media   string `json:"media" validate:"omitempty,url,max=500"`
	}
	pi := new(PostInput)
	if err := utils.StrictBodyParser(c, pi); err != nil {
		Logger.Warn(c.UserContext()).Logs(fmt.Sprintf("Failed to parse post body: %v", err))
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format"))
	}
	if verr := Validator.Validate(pi); verr != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed"))
	}

	post := models.Post{
		AuthorID: userID,
		Content:  pi.Content,
		MediaURL: pi.Media,
	}
	if err := DB.WithContext(c.UserContext()).Create(&post).Error; err != nil {
		Logger.Error(c.UserContext()).Logs(fmt.Sprintf("Failed to create post: %v", err))
		return utils.SendError(c, utils.ErrInternalServerError)
	}

	return utils.Success(c).
		WithStatus(fiber.StatusCreated).
		WithMessage("Post created").
		WithData(fiber.Map{"post": post}).Send()
}

// GetPost handles GET /posts/:postId, served from the Redis cache when warm.
func GetPost(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid post id"))
	}

	key := "post:" + postID.String()
	if Redis != nil {
		if cached, err := Redis.Get(c.UserContext(), key).Result(); err == nil {
			var post models.Post
			if err := json.Unmarshal([]byte(cached), &post); err == nil {
				return utils.Success(c).WithData(fiber.Map{"post": post}).Send()
			}
		}
	}

	var post models.Post
	err = DB.WithContext(c.UserContext()).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		First(&post, "id = ?", postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.SendError(c, utils.NewError(utils.ErrNotFound.Code, "Post not found"))
		}
		return utils.SendError(c, utils.ErrInternalServerError.WithCause(err))
	}

	if Redis != nil {
		if data, err := json.Marshal(post); err == nil {
			Redis.Set(c.UserContext(), key, data, postCacheTTL)
		}
	}

	return utils.Success(c).WithData(fiber.Map{"post": post}).Send()
}

// ListPosts handles GET /posts, the paginated newest-first feed.
func ListPosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var posts []models.Post
	err := DB.WithContext(c.UserContext()).
		Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Find(&posts).Error
	if err != nil {
		return utils.SendError(c, utils.ErrInternalServerError.WithCause(err))
	}

	return utils.Success(c).WithData(fiber.Map{"posts": posts}).Send()
}
