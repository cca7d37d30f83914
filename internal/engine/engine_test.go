package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/farahadel/connectly/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "engine.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// single writer; concurrent transactions queue on the pool
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.RegisterModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &user
}

func seedPost(t *testing.T, db *gorm.DB, author *models.User) *models.Post {
	t.Helper()
	post := models.Post{
		AuthorID: author.ID,
		Content:  "hello world",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return &post
}

// factCounts tallies the live reaction facts per kind for a post.
func factCounts(t *testing.T, db *gorm.DB, postID uuid.UUID) map[models.ReactionKind]int {
	t.Helper()
	var facts []models.Reaction
	if err := db.Where("post_id = ?", postID).Find(&facts).Error; err != nil {
		t.Fatalf("load facts: %v", err)
	}
	counts := make(map[models.ReactionKind]int)
	for _, f := range facts {
		counts[f.Kind]++
	}
	return counts
}

// assertAggregateMatchesFacts checks the core invariant: every bucket equals
// the fact count of its kind, and the total equals the bucket sum.
func assertAggregateMatchesFacts(t *testing.T, db *gorm.DB, postID uuid.UUID) {
	t.Helper()

	agg, err := PostAggregateSnapshot(context.Background(), db, postID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	facts := factCounts(t, db, postID)

	for _, kind := range models.ReactionKinds() {
		if got, want := agg.Reactions.Bucket(kind), facts[kind]; got != want {
			t.Errorf("bucket %s = %d, want %d (facts)", kind, got, want)
		}
	}
	if agg.LikesCount != agg.Reactions.Sum() {
		t.Errorf("likesCount = %d, want bucket sum %d", agg.LikesCount, agg.Reactions.Sum())
	}
	if agg.LikesCount < 0 || agg.CommentsCount < 0 {
		t.Errorf("negative counters: likes=%d comments=%d", agg.LikesCount, agg.CommentsCount)
	}
}
