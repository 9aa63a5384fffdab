package repository

import (
	"context"

	"github.com/techmaster-vietnam/blogkit/models"
	"gorm.io/gorm"
)

// PostRepository handles post database operations
type PostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

// publicAuthor chỉ nạp các cột public của tác giả, email và password hash không rời database
func publicAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "image_file")
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// GetByID gets a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Author", publicAuthor).Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List lists all posts with pagination, newest first
func (r *PostRepository) List(ctx context.Context, offset, limit int) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).Preload("Author", publicAuthor).
		Order("date_posted DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

// ListByAuthor lists posts by author ID
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).Preload("Author", publicAuthor).Where("user_id = ?", authorID).
		Order("date_posted DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}
