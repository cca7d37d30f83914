package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/farahadel/connectly/internal/auth"
	"github.com/farahadel/connectly/internal/engine"
	"github.com/farahadel/connectly/internal/models"
	"github.com/farahadel/connectly/pkg/logger"
	storage "github.com/farahadel/connectly/pkg/redis"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gateway is the realtime adapter. It authenticates the handshake, keeps the
// session registry current, and translates socket events into the same engine
// calls the HTTP handlers make.
type Gateway struct {
	DB       *gorm.DB
	Redis    *storage.RedisClient
	Log      *logger.Logger
	Registry *Registry
}

func NewGateway(db *gorm.DB, rclient *storage.RedisClient, log *logger.Logger) *Gateway {
	return &Gateway{
		DB:       db,
		Redis:    rclient,
		Log:      log,
		Registry: NewRegistry(),
	}
}

// Upgrade guards the websocket route; non-upgrade requests get 426.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the Fiber handler serving the socket endpoint.
func (g *Gateway) Handler() fiber.Handler {
	return websocket.New(g.serve)
}

func (g *Gateway) serve(conn *websocket.Conn) {
	defer conn.Close()

	userID, err := auth.ResolveUserID(conn.Query("token"))
	if err != nil {
		conn.WriteJSON(Frame{Event: "error", Message: "Invalid or missing token"})
		return
	}

	client := NewClient(userID, conn)
	g.Registry.Register(client)
	defer g.Registry.Unregister(client)

	ctx := context.Background()
	g.Log.Info(ctx).WithMeta(utils.Map{"user_id": userID.String()}).Logs("Socket session opened")

	for {
		var req inbound
		if err := conn.ReadJSON(&req); err != nil {
			break
		}
		g.dispatch(ctx, client, req)
	}

	g.Log.Info(ctx).WithMeta(utils.Map{"user_id": userID.String()}).Logs("Socket session closed")
}

func (g *Gateway) dispatch(ctx context.Context, client *Client, req inbound) {
	switch req.Event {
	case "room:join":
		g.handleRoomJoin(client, req)
	case "room:leave":
		g.handleRoomLeave(client, req)
	case "reaction:upsert":
		g.handleReactionUpsert(ctx, client, req)
	case "reaction:remove":
		g.handleReactionRemove(ctx, client, req)
	case "comment:create":
		g.handleCommentCreate(ctx, client, req)
	case "comment:delete":
		g.handleCommentDelete(ctx, client, req)
	case "comment:list":
		g.handleCommentList(ctx, client, req)
	default:
		client.Ack(req.ID, false, nil, fmt.Sprintf("Unknown event %q", req.Event))
	}
}

func parsePostID(data json.RawMessage) (uuid.UUID, error) {
	var payload struct {
		PostID string `json:"postId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(payload.PostID)
}

func (g *Gateway) handleRoomJoin(client *Client, req inbound) {
	postID, err := parsePostID(req.Data)
	if err != nil {
		client.Ack(req.ID, false, nil, "Invalid payload")
		return
	}
	g.Registry.Join(client, postID)
	client.Ack(req.ID, true, fiber.Map{"postId": postID}, "")
}

func (g *Gateway) handleRoomLeave(client *Client, req inbound) {
	postID, err := parsePostID(req.Data)
	if err != nil {
		client.Ack(req.ID, false, nil, "Invalid payload")
		return
	}
	g.Registry.Leave(client, postID)
	client.Ack(req.ID, true, fiber.Map{"postId": postID}, "")
}

func (g *Gateway) handleReactionUpsert(ctx context.Context, client *Client, req inbound) {
	var payload struct {
		PostID string `json:"postId"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(req.Data, &payload); err != nil {
		client.Ack(req.ID, false, nil, "Invalid payload")
		return
	}
	postID, err := uuid.Parse(payload.PostID)
	if err != nil {
		client.Ack(req.ID, false, nil, "Invalid post id")
		return
	}

	reaction, agg, err := engine.UpsertReaction(ctx, g.Redis, g.DB, client.UserID, postID, models.ReactionKind(payload.Type))
	if err != nil {
		g.Log.Warn(ctx).Logs(fmt.Sprintf("Socket reaction upsert failed: %v", err))
		client.Ack(req.ID, false, nil, errMessage(err))
		return
	}

	var myReaction interface{}
	if reaction != nil {
		myReaction = reaction.Kind
	}
	client.Ack(req.ID, true, fiber.Map{
		"postId":     agg.PostID,
		"counts":     agg.Reactions,
		"likesCount": agg.LikesCount,
		"myReaction": myReaction,
	}, "")

	g.Registry.Broadcast(postID, "reaction:updated", fiber.Map{
		"postId":     agg.PostID,
		"counts":     agg.Reactions,
		"likesCount": agg.LikesCount,
	}, client)
}

func (g *Gateway) handleReactionRemove(ctx context.Context, client *Client, req inbound) {
	postID, err := parsePostID(req.Data)
	if err != nil {
		client.Ack(req.ID, false, nil, "Invalid payload")
		return
	}

	agg, err := engine.RemoveReaction(ctx, g.Redis, g.DB, client.UserID, postID)
	if err != nil {
		g.Log.Warn(ctx).Logs(fmt.Sprintf("Socket reaction remove failed: %v", err))
		client.Ack(req.ID, false, nil, errMessage(err))
		return
	}

	client.Ack(req.ID, true, fiber.Map{
		"postId":     agg.PostID,
		"counts":     agg.Reactions,
		"likesCount": agg.LikesCount,
		"myReaction": nil,
	}, "")

	g.Registry.Broadcast(postID, "reaction:updated", fiber.Map{
		"postId":     agg.PostID,
		"counts":     agg.Reactions,
		"likesCount": agg.LikesCount,
	}, client)
}

func (g *Gateway) handleCommentCreate(ctx context.Context, client *Client, req inbound) {
	var payload struct {
		PostID   string `json:"postId"`
		Content  string `json:"content"`
		Media    string `json:"media"`
		ParentID string `json:"parentId"`
	}
	if err := json.Unmarshal(req.Data, &payload); err != nil {
		client.Ack(req.ID, false, nil, "Invalid payload")
		return
	}
	postID, err := uuid.Parse(payload.PostID)
	if err != nil {
		client.Ack(req.ID, false, nil, "Invalid post id")
		return
	}
	var parentID *uuid.UUID
	if payload.ParentID != "" {
		pid, err := uuid.Parse(payload.ParentID)
		if err != nil {
			client.Ack(req.ID, false, nil, "Invalid parent comment id")
			return
		}
		parentID = &pid
	}

	comment, count, err := engine.CreateComment(ctx, g.Redis, g.DB, postID, client.UserID, payload.Content, payload.Media, parentID)
	if err != nil {
		g.Log.Warn(ctx).Logs(fmt.Sprintf("Socket comment create failed: %v", err))
		client.Ack(req.ID, false, nil, errMessage(err))
		return
	}

	client.Ack(req.ID, true, fiber.Map{
		"comment":       comment,
		"commentsCount": count,
	}, "")

	g.Registry.Broadcast(postID, "comment:created", fiber.Map{
		"postId":        postID,
		"comment":       comment,
		"commentsCount": count,
	}, client)
}

func (g *Gateway) handleCommentDelete(ctx context.Context, client *Client, req inbound) {
	var payload struct {
		CommentID string `json:"commentId"`
	}
	if err := json.Unmarshal(req.Data, &payload); err != nil {
		client.Ack(req.ID, false, nil, "Invalid payload")
		return
	}
	commentID, err := uuid.Parse(payload.CommentID)
	if err != nil {
		client.Ack(req.ID, false, nil, "Invalid comment id")
		return
	}

	postID, count, err := engine.DeleteComment(ctx, g.Redis, g.DB, commentID, client.UserID)
	if err != nil {
		g.Log.Warn(ctx).Logs(fmt.Sprintf("Socket comment delete failed: %v", err))
		client.Ack(req.ID, false, nil, errMessage(err))
		return
	}

	client.Ack(req.ID, true, fiber.Map{
		"postId":        postID,
		"commentId":     commentID,
		"commentsCount": count,
	}, "")

	g.Registry.Broadcast(postID, "comment:deleted", fiber.Map{
		"postId":        postID,
		"commentId":     commentID,
		"commentsCount": count,
	}, client)
}

func (g *Gateway) handleCommentList(ctx context.Context, client *Client, req inbound) {
	var payload struct {
		PostID string `json:"postId"`
		Page   int    `json:"page"`
		Limit  int    `json:"limit"`
	}
	if err := json.Unmarshal(req.Data, &payload); err != nil {
		client.Ack(req.ID, false, nil, "Invalid payload")
		return
	}
	postID, err := uuid.Parse(payload.PostID)
	if err != nil {
		client.Ack(req.ID, false, nil, "Invalid post id")
		return
	}

	comments, pagination, err := engine.ListComments(ctx, g.DB, postID, payload.Page, payload.Limit)
	if err != nil {
		client.Ack(req.ID, false, nil, errMessage(err))
		return
	}

	client.Ack(req.ID, true, fiber.Map{
		"comments":   comments,
		"pagination": pagination,
	}, "")
}

// errMessage keeps internal details out of socket error acks.
func errMessage(err error) string {
	var appErr *utils.CustomError
	if utils.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}
