package service

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nightlight/internal/db"
)

func setupPostServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:post-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Post{}, &db.PostImage{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func TestPostService_CreateComputesSlug(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	post, err := svc.Create(PostInput{Title: "Hello", Description: "first light"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if post.Slug != "hello" {
		t.Fatalf("expected slug %q, got %q", "hello", post.Slug)
	}
	if post.Author != DefaultAuthor {
		t.Fatalf("expected author %q, got %q", DefaultAuthor, post.Author)
	}
	if post.PostDate.IsZero() {
		t.Fatal("expected a server-assigned post date")
	}
}

func TestPostService_CreateRequiresTitle(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	if _, err := svc.Create(PostInput{Title: "   ", Description: "no title"}); err != ErrTitleRequired {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	var count int64
	gdb.Model(&db.Post{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no posts, got %d", count)
	}
}

func TestPostService_CreateKeepsImageOrder(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	post, err := svc.Create(PostInput{
		Title: "Ordered",
		Images: []db.PostImage{
			{Filename: "first", OriginalPath: "a", Width: 100},
			{Filename: "second", OriginalPath: "b", Width: 200},
			{Filename: "third", OriginalPath: "c", Width: 300},
		},
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	loaded, err := svc.Get(post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if len(loaded.Images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(loaded.Images))
	}
	for i, want := range []string{"first", "second", "third"} {
		if loaded.Images[i].Filename != want {
			t.Fatalf("image %d: expected %q, got %q", i, want, loaded.Images[i].Filename)
		}
	}
}

func TestPost_SetTitleRecomputesSlugOnlyOnChange(t *testing.T) {
	var post db.Post
	post.SetTitle("Night Walks")
	if post.Slug != "night-walks" {
		t.Fatalf("expected slug %q, got %q", "night-walks", post.Slug)
	}

	// 相同标题不应触碰 slug
	post.Slug = "hand-edited"
	post.SetTitle("Night Walks")
	if post.Slug != "hand-edited" {
		t.Fatalf("slug recomputed without a title change: %q", post.Slug)
	}

	post.SetTitle("Day Walks")
	if post.Slug != "day-walks" {
		t.Fatalf("expected slug %q after title change, got %q", "day-walks", post.Slug)
	}
}

func TestPostService_SaveWithoutTitleChangeKeepsSlug(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	post, err := svc.Create(PostInput{Title: "Stable Slug"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	post.Description = "touched something else"
	if err := gdb.Save(post).Error; err != nil {
		t.Fatalf("save post: %v", err)
	}

	loaded, err := svc.Get(post.ID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if loaded.Slug != "stable-slug" {
		t.Fatalf("slug changed on unrelated save: %q", loaded.Slug)
	}
}

func TestPostService_ListAllNewestFirst(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	older := db.Post{PostDate: time.Now().Add(-time.Hour), Title: "older"}
	newer := db.Post{PostDate: time.Now(), Title: "newer"}
	if err := gdb.Create(&older).Error; err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := gdb.Create(&newer).Error; err != nil {
		t.Fatalf("create newer: %v", err)
	}

	posts, err := svc.ListAll()
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Title != "newer" {
		t.Fatalf("expected newest post first, got %q", posts[0].Title)
	}
}

func TestPostService_RecordVariantsOnlySetsProduced(t *testing.T) {
	gdb := setupPostServiceTestDB(t)
	svc := NewPostService(gdb)

	post, err := svc.Create(PostInput{
		Title:  "Variants",
		Images: []db.PostImage{{Filename: "img", OriginalPath: "p", Width: 900}},
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	img := &post.Images[0]
	set := DerivedSet{SmallPath: "small/img.webp", MediumPath: "medium/img.webp"}
	if err := svc.RecordVariants(img, set); err != nil {
		t.Fatalf("record variants: %v", err)
	}

	var loaded db.PostImage
	if err := gdb.First(&loaded, img.ID).Error; err != nil {
		t.Fatalf("load image: %v", err)
	}
	if loaded.SmallPath != "small/img.webp" || loaded.MediumPath != "medium/img.webp" {
		t.Fatalf("variant paths not stored: %+v", loaded)
	}
	if loaded.LargePath != "" {
		t.Fatalf("large path set without a produced file: %q", loaded.LargePath)
	}
	if !loaded.HasSmall() || !loaded.HasMedium() || loaded.HasLarge() {
		t.Fatal("availability helpers disagree with stored paths")
	}
}
