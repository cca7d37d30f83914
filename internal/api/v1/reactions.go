package v1

import (
	"fmt"

	"github.com/farahadel/connectly/internal/auth"
	"github.com/farahadel/connectly/internal/engine"
	"github.com/farahadel/connectly/internal/models"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UpsertReaction handles POST /reactions/:postId.
func UpsertReaction(c *fiber.Ctx) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return utils.SendError(c, utils.ErrUnauthorized)
	}

	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid post id"))
	}

	type ReactionInput struct {
		Type string `json:"type" validate:"required,oneof=like love haha wow sad angry"`
	}
	ri := new(ReactionInput)
	if err := utils.StrictBodyParser(c, ri); err != nil {
		Logger.Warn(c.UserContext()).Logs(fmt.Sprintf("Failed to parse reaction body: %v", err))
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid request format"))
	}
	if verr := Validator.Validate(ri); verr != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid reaction type"))
	}

	reaction, agg, err := engine.UpsertReaction(c.UserContext(), Redis, DB, userID, postID, models.ReactionKind(ri.Type))
	if err != nil {
		Logger.Warn(c.UserContext()).Logs(fmt.Sprintf("Reaction upsert failed: %v", err))
		return utils.SendError(c, err)
	}

	return utils.Success(c).
		WithMessage("Reaction updated successfully").
		WithData(fiber.Map{
			"reaction": reaction,
			"post":     agg,
		}).Send()
}

// RemoveReaction handles DELETE /reactions/:postId.
func RemoveReaction(c *fiber.Ctx) error {
	userID, ok := auth.CallerID(c)
	if !ok {
		return utils.SendError(c, utils.ErrUnauthorized)
	}

	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return utils.SendError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid post id"))
	}

	agg, err := engine.RemoveReaction(c.UserContext(), Redis, DB, userID, postID)
	if err != nil {
		Logger.Warn(c.UserContext()).Logs(fmt.Sprintf("Reaction remove failed: %v", err))
		return utils.SendError(c, err)
	}

	return utils.Success(c).
		WithMessage("Reaction removed").
		WithData(fiber.Map{"post": agg}).Send()
}
