package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/farahadel/connectly/internal/models"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/google/uuid"
)

func TestCreateComment(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)

	comment, count, err := CreateComment(context.Background(), nil, db, post.ID, user.ID, "  first!  ", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if comment.Content != "first!" {
		t.Errorf("content = %q, want trimmed %q", comment.Content, "first!")
	}
	if comment.Author.Username != "alice" {
		t.Errorf("author = %q, want alice", comment.Author.Username)
	}
	if count != 1 {
		t.Errorf("commentsCount = %d, want 1", count)
	}
}

func TestCreateCommentEmptyContent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, _, err := CreateComment(context.Background(), nil, db, post.ID, user.ID, content, "", nil)
		if err == nil {
			t.Fatalf("expected error for content %q", content)
		}
		if utils.CodeOf(err) != utils.ErrBadRequest.Code {
			t.Errorf("content %q: code = %d, want %d", content, utils.CodeOf(err), utils.ErrBadRequest.Code)
		}
	}
}

func TestCreateCommentUnknownPost(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")

	_, _, err := CreateComment(context.Background(), nil, db, uuid.New(), user.ID, "hello", "", nil)
	if err == nil {
		t.Fatal("expected error for unknown post")
	}
	if utils.CodeOf(err) != utils.ErrNotFound.Code {
		t.Errorf("code = %d, want %d", utils.CodeOf(err), utils.ErrNotFound.Code)
	}
}

func TestCreateCommentReply(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	parent, _, err := CreateComment(ctx, nil, db, post.ID, user.ID, "parent", "", nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	reply, count, err := CreateComment(ctx, nil, db, post.ID, user.ID, "reply", "", &parent.ID)
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if reply.ParentID == nil || *reply.ParentID != parent.ID {
		t.Errorf("parent id = %v, want %s", reply.ParentID, parent.ID)
	}
	if count != 2 {
		t.Errorf("commentsCount = %d, want 2", count)
	}
}

func TestCreateCommentParentOnOtherPost(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	postA := seedPost(t, db, user)
	postB := seedPost(t, db, user)
	ctx := context.Background()

	parent, _, err := CreateComment(ctx, nil, db, postA.ID, user.ID, "on post A", "", nil)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	_, _, err = CreateComment(ctx, nil, db, postB.ID, user.ID, "cross-post reply", "", &parent.ID)
	if err == nil {
		t.Fatal("expected error for parent on another post")
	}
	if utils.CodeOf(err) != utils.ErrNotFound.Code {
		t.Errorf("code = %d, want %d", utils.CodeOf(err), utils.ErrNotFound.Code)
	}
}

func TestDeleteComment(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	comment, _, err := CreateComment(ctx, nil, db, post.ID, user.ID, "bye", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	postID, count, err := DeleteComment(ctx, nil, db, comment.ID, user.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if postID != post.ID {
		t.Errorf("postID = %s, want %s", postID, post.ID)
	}
	if count != 0 {
		t.Errorf("commentsCount = %d, want 0", count)
	}
}

func TestDeleteCommentByNonAuthor(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice)
	ctx := context.Background()

	comment, _, err := CreateComment(ctx, nil, db, post.ID, alice.ID, "mine", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err = DeleteComment(ctx, nil, db, comment.ID, bob.ID)
	if err == nil {
		t.Fatal("expected error for non-author delete")
	}
	if utils.CodeOf(err) != utils.ErrNotFound.Code {
		t.Errorf("code = %d, want %d", utils.CodeOf(err), utils.ErrNotFound.Code)
	}

	// counter untouched
	agg, err := PostAggregateSnapshot(ctx, db, post.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if agg.CommentsCount != 1 {
		t.Errorf("commentsCount = %d, want 1", agg.CommentsCount)
	}
}

func TestDeleteCommentTwice(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	comment, _, err := CreateComment(ctx, nil, db, post.ID, user.ID, "once", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := DeleteComment(ctx, nil, db, comment.ID, user.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}

	_, _, err = DeleteComment(ctx, nil, db, comment.ID, user.ID)
	if utils.CodeOf(err) != utils.ErrNotFound.Code {
		t.Errorf("second delete code = %d, want %d", utils.CodeOf(err), utils.ErrNotFound.Code)
	}

	agg, err := PostAggregateSnapshot(ctx, db, post.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if agg.CommentsCount != 0 {
		t.Errorf("commentsCount = %d, want 0", agg.CommentsCount)
	}
}

func TestCommentsCountFloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	comment, _, err := CreateComment(ctx, nil, db, post.ID, user.ID, "drifted", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// simulate prior counter drift
	if err := db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("comments_count", 0).Error; err != nil {
		t.Fatalf("force drift: %v", err)
	}

	_, count, err := DeleteComment(ctx, nil, db, comment.ID, user.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if count != 0 {
		t.Errorf("commentsCount = %d, want clamped 0", count)
	}
}

func TestUpdateComment(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice)
	ctx := context.Background()

	comment, _, err := CreateComment(ctx, nil, db, post.ID, alice.ID, "draft", "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := UpdateComment(ctx, db, comment.ID, alice.ID, "  final  ")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "final" {
		t.Errorf("content = %q, want %q", updated.Content, "final")
	}

	if _, err := UpdateComment(ctx, db, comment.ID, bob.ID, "hijack"); utils.CodeOf(err) != utils.ErrNotFound.Code {
		t.Errorf("non-author update code = %d, want %d", utils.CodeOf(err), utils.ErrNotFound.Code)
	}
}

func TestListCommentsPagination(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		comment := models.Comment{
			PostID:    post.ID,
			AuthorID:  user.ID,
			Content:   fmt.Sprintf("comment %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&comment).Error; err != nil {
			t.Fatalf("seed comment %d: %v", i, err)
		}
	}

	comments, pagination, err := ListComments(context.Background(), db, post.ID, 1, 2)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("page 1 size = %d, want 2", len(comments))
	}
	// newest first
	if comments[0].Content != "comment 4" || comments[1].Content != "comment 3" {
		t.Errorf("page 1 order = [%q, %q], want newest first", comments[0].Content, comments[1].Content)
	}
	if pagination.TotalComments != 5 || pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v, want total 5 over 3 pages", pagination)
	}
	if !pagination.HasNext || pagination.HasPrev {
		t.Errorf("page 1 hasNext/hasPrev = %v/%v, want true/false", pagination.HasNext, pagination.HasPrev)
	}

	comments, pagination, err = ListComments(context.Background(), db, post.ID, 3, 2)
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("page 3 size = %d, want 1", len(comments))
	}
	if pagination.HasNext || !pagination.HasPrev {
		t.Errorf("page 3 hasNext/hasPrev = %v/%v, want false/true", pagination.HasNext, pagination.HasPrev)
	}
}

func TestListCommentsEmptyPost(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)

	comments, pagination, err := ListComments(context.Background(), db, post.ID, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("comments = %d, want 0", len(comments))
	}
	if pagination.TotalComments != 0 || pagination.HasNext || pagination.HasPrev {
		t.Errorf("pagination = %+v, want empty", pagination)
	}
}
