package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/farahadel/connectly/internal/models"
	"github.com/farahadel/connectly/pkg/utils"
	"github.com/google/uuid"
)

func TestUpsertReactionFirstTime(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	reaction, agg, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLike)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if reaction == nil {
		t.Fatal("expected a reaction fact, got nil")
	}
	if reaction.Kind != models.KindLike {
		t.Errorf("kind = %s, want like", reaction.Kind)
	}
	if agg.Reactions.Like != 1 {
		t.Errorf("like bucket = %d, want 1", agg.Reactions.Like)
	}
	if agg.LikesCount != 1 {
		t.Errorf("likesCount = %d, want 1", agg.LikesCount)
	}
	assertAggregateMatchesFacts(t, db, post.ID)
}

func TestUpsertReactionSwitchKind(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	if _, _, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLike); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	reaction, agg, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLove)
	if err != nil {
		t.Fatalf("switch upsert: %v", err)
	}

	if reaction == nil || reaction.Kind != models.KindLove {
		t.Fatalf("expected relabeled fact with kind love, got %+v", reaction)
	}
	if agg.Reactions.Like != 0 || agg.Reactions.Love != 1 {
		t.Errorf("buckets = like:%d love:%d, want like:0 love:1", agg.Reactions.Like, agg.Reactions.Love)
	}
	// switching kind is count-neutral on the total
	if agg.LikesCount != 1 {
		t.Errorf("likesCount = %d, want 1", agg.LikesCount)
	}
	assertAggregateMatchesFacts(t, db, post.ID)
}

func TestUpsertReactionToggleOff(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	if _, _, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLike); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	reaction, agg, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLike)
	if err != nil {
		t.Fatalf("toggle upsert: %v", err)
	}

	if reaction != nil {
		t.Errorf("expected nil reaction after toggle-off, got %+v", reaction)
	}
	if agg.Reactions.Like != 0 || agg.LikesCount != 0 {
		t.Errorf("aggregate = like:%d likes:%d, want zeros", agg.Reactions.Like, agg.LikesCount)
	}

	var remaining int64
	db.Model(&models.Reaction{}).Where("post_id = ? AND user_id = ?", post.ID, user.ID).Count(&remaining)
	if remaining != 0 {
		t.Errorf("reaction facts remaining = %d, want 0", remaining)
	}
	assertAggregateMatchesFacts(t, db, post.ID)
}

func TestUpsertReactionFullScenario(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	// like -> {like:1}, total 1
	_, agg, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLike)
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if agg.Reactions.Like != 1 || agg.LikesCount != 1 {
		t.Fatalf("step 1 aggregate = %+v", agg)
	}

	// love -> {like:0, love:1}, total unchanged
	_, agg, err = UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLove)
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if agg.Reactions.Like != 0 || agg.Reactions.Love != 1 || agg.LikesCount != 1 {
		t.Fatalf("step 2 aggregate = %+v", agg)
	}

	// love again -> toggle off, everything back to zero
	_, agg, err = UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindLove)
	if err != nil {
		t.Fatalf("step 3: %v", err)
	}
	if agg.Reactions.Love != 0 || agg.LikesCount != 0 {
		t.Fatalf("step 3 aggregate = %+v", agg)
	}
	assertAggregateMatchesFacts(t, db, post.ID)
}

func TestUpsertReactionInvalidKind(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)

	_, _, err := UpsertReaction(context.Background(), nil, db, user.ID, post.ID, models.ReactionKind("meh"))
	if err == nil {
		t.Fatal("expected error for invalid kind")
	}
	if utils.CodeOf(err) != utils.ErrBadRequest.Code {
		t.Errorf("code = %d, want %d", utils.CodeOf(err), utils.ErrBadRequest.Code)
	}
}

func TestUpsertReactionUnknownPost(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")

	_, _, err := UpsertReaction(context.Background(), nil, db, user.ID, uuid.New(), models.KindLike)
	if err == nil {
		t.Fatal("expected error for unknown post")
	}
	if utils.CodeOf(err) != utils.ErrNotFound.Code {
		t.Errorf("code = %d, want %d", utils.CodeOf(err), utils.ErrNotFound.Code)
	}
}

func TestRemoveReaction(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	if _, _, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindWow); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	agg, err := RemoveReaction(ctx, nil, db, user.ID, post.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if agg.Reactions.Wow != 0 || agg.LikesCount != 0 {
		t.Errorf("aggregate = wow:%d likes:%d, want zeros", agg.Reactions.Wow, agg.LikesCount)
	}
	assertAggregateMatchesFacts(t, db, post.ID)
}

func TestRemoveReactionNoop(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice)
	ctx := context.Background()

	if _, _, err := UpsertReaction(ctx, nil, db, alice.ID, post.ID, models.KindLike); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// bob never reacted; remove must not touch alice's bucket
	agg, err := RemoveReaction(ctx, nil, db, bob.ID, post.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if agg.Reactions.Like != 1 || agg.LikesCount != 1 {
		t.Errorf("aggregate changed by no-op remove: %+v", agg)
	}
}

func TestConcurrentFirstReactions(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, "author")
	post := seedPost(t, db, author)
	ctx := context.Background()

	const n = 8
	users := make([]*models.User, n)
	for i := range users {
		users[i] = seedUser(t, db, fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range users {
		wg.Add(1)
		go func(userID uuid.UUID) {
			defer wg.Done()
			if _, _, err := UpsertReaction(ctx, nil, db, userID, post.ID, models.KindLike); err != nil {
				errs <- err
			}
		}(u.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent upsert: %v", err)
	}

	var facts int64
	db.Model(&models.Reaction{}).Where("post_id = ?", post.ID).Count(&facts)
	if facts != n {
		t.Errorf("facts = %d, want %d", facts, n)
	}

	agg, err := PostAggregateSnapshot(ctx, db, post.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if agg.Reactions.Like != n || agg.LikesCount != n {
		t.Errorf("aggregate = like:%d likes:%d, want %d/%d", agg.Reactions.Like, agg.LikesCount, n, n)
	}
	assertAggregateMatchesFacts(t, db, post.ID)
}

func TestAggregateInvariantAcrossSequences(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	post := seedPost(t, db, alice)
	ctx := context.Background()

	steps := []struct {
		user uuid.UUID
		kind models.ReactionKind
	}{
		{alice.ID, models.KindLike},
		{bob.ID, models.KindLove},
		{carol.ID, models.KindLike},
		{alice.ID, models.KindHaha},  // switch
		{bob.ID, models.KindLove},    // toggle off
		{carol.ID, models.KindLike},  // toggle off
		{carol.ID, models.KindAngry}, // back in
		{alice.ID, models.KindHaha},  // toggle off
	}

	for i, step := range steps {
		if _, _, err := UpsertReaction(ctx, nil, db, step.user, post.ID, step.kind); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		assertAggregateMatchesFacts(t, db, post.ID)
	}

	agg, err := PostAggregateSnapshot(ctx, db, post.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	// only carol's angry reaction should survive
	if agg.LikesCount != 1 || agg.Reactions.Angry != 1 {
		t.Errorf("final aggregate = %+v, want only angry:1", agg)
	}
}

func TestReactionOf(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice")
	post := seedPost(t, db, user)
	ctx := context.Background()

	got, err := ReactionOf(ctx, db, user.ID, post.ID)
	if err != nil {
		t.Fatalf("reaction of: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil before reacting, got %+v", got)
	}

	if _, _, err := UpsertReaction(ctx, nil, db, user.ID, post.ID, models.KindSad); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err = ReactionOf(ctx, db, user.ID, post.ID)
	if err != nil {
		t.Fatalf("reaction of: %v", err)
	}
	if got == nil || got.Kind != models.KindSad {
		t.Errorf("reaction = %+v, want kind sad", got)
	}
}
