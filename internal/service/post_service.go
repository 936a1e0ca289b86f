package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nightlight/internal/db"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrTitleRequired = errors.New("post title is required")
)

// DefaultAuthor is the byline stamped on every post. Posts carry no
// relational link to the account that submitted them.
const DefaultAuthor = "Mark Foster"

// PostService wraps post related database operations.
type PostService struct {
	db *gorm.DB
}

// PostInput represents fields accepted when creating a post. Images are
// persisted in the order given, which is the upload order.
type PostInput struct {
	Title       string
	Description string
	Images      []db.PostImage
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// Create persists a post with a server-assigned date. The slug is computed
// from the title at this point and never recomputed unless the title
// changes.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	post := db.Post{
		PostDate:    time.Now(),
		Description: strings.TrimSpace(input.Description),
		Author:      DefaultAuthor,
		Images:      input.Images,
	}
	post.SetTitle(title)

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListAll returns all posts newest first with their images preloaded.
func (s *PostService) ListAll() ([]db.Post, error) {
	var posts []db.Post
	if err := s.db.Preload("Images").Order("post_date desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches a post by id with images preloaded.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Images").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// RecordVariants stores the variant paths derivation actually produced on
// the image row. Classes that produced no file stay empty.
func (s *PostService) RecordVariants(img *db.PostImage, set DerivedSet) error {
	updates := map[string]interface{}{}
	if set.SmallPath != "" {
		updates["small_path"] = set.SmallPath
	}
	if set.MediumPath != "" {
		updates["medium_path"] = set.MediumPath
	}
	if set.LargePath != "" {
		updates["large_path"] = set.LargePath
	}
	if len(updates) == 0 {
		return nil
	}

	if err := s.db.Model(img).Updates(updates).Error; err != nil {
		return err
	}
	return nil
}
