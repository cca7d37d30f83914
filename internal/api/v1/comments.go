package v1

import (
	"fmt"

	"github.com/farahadel/connectly/internal/auth"
	"github.com/farahadel/connectly/internal/engine"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CreateComment handles POST /comments/:postId.
func CreateComment(c *fiber.Ctx) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return utils.SendError(c, utils.ErrUnauthorized)
	}

	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid post id"))
	}

	type CommentInput struct {
		Content  string `json:"content" validate:"required,min=1,max=1000"`
		Media    string `json:"media" validate:"omitempty,url,max=500"`
		ParentID string `json:"parentId" validate:"omitempty,uuid4"`
	}
	ci := new(CommentInput)
	if err := utils.StrictBodyParser(c, ci); err != nil {
		Logger.Warn(c.UserContext()).Logs(fmt.Sprintf("Failed to parse comment body: %v", err))
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format"))
	}
	if verr := Validator.Validate(ci); verr != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed"))
	}

	var parentID *uuid.UUID
	if ci.ParentID != "" {
		pid, err := uuid.Parse(ci.ParentID)
		if err != nil {
			return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid parent comment id"))
		}
		parentID = &pid
	}

	comment, count, err := engine.CreateComment(c.UserContext(), Redis, DB, postID, userID, ci.Content, ci.Media, parentID)
	if err != nil {
		Logger.Warn(c.UserContext()).Logs(fmt.Sprintf("Comment create failed: %v", err))
		return utils.SendError(c, err)
	}

	return utils.Success(c).
		WithStatus(fiber.StatusCreated).
		WithMessage("Comment created").
		WithData(fiber.Map{
			"comment":       comment,
			"commentsCount": count,
		}).Send()
}

// UpdateComment handles PATCH /comments/:commentId.
func UpdateComment(c *fiber.Ctx) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return utils.SendError(c, utils.ErrUnauthorized)
	}

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid comment id"))
	}

	type UpdateInput struct {
		Content string `json:"content" validate:"required,min=1,max=1000"`
	}
	ui := new(UpdateInput)
	if err := utils.StrictBodyParser(c, ui); err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format"))
	}
	if verr := Validator.Validate(ui); verr != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Validation failed"))
	}

	comment, err := engine.UpdateComment(c.UserContext(), DB, commentID, userID, ui.Content)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.Success(c).
		WithMessage("Comment updated").
		WithData(fiber.Map{"comment": comment}).Send()
}

// DeleteComment handles DELETE /comments/:commentId.
func DeleteComment(c *fiber.Ctx) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return utils.SendError(c, utils.ErrUnauthorized)
	}

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid comment id"))
	}

	postID, count, err := engine.DeleteComment(c.UserContext(), Redis, DB, commentID, userID)
	if err != nil {
		Logger.Warn(c.UserContext()).Logs(fmt.Sprintf("Comment delete failed: %v", err))
		return utils.SendError(c, err)
	}

	return utils.Success(c).
		WithMessage("Comment deleted").
		WithData(fiber.Map{
			"postId":        postID,
			"commentsCount": count,
		}).Send()
}

// ListComments handles GET /comments/:postId.
func ListComments(c *fiber.Ctx) error {
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid post id"))
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	comments, pagination, err := engine.ListComments(c.UserContext(), DB, postID, page, limit)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.Success(c).
		WithData(fiber.Map{
			"comments":   comments,
			"pagination": pagination,
		}).Send()
}
