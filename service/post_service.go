package service

import (
	"context"
	"strings"

	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/blogkit/metrics"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/repository"
	"github.com/techmaster-vietnam/blogkit/utils"
	"github.com/techmaster-vietnam/goerrorkit"
)

// DefaultPerPage là số bài viết mỗi trang
const DefaultPerPage = 5

// MaxPage giới hạn số trang để offset (page-1)*perPage không tràn int
const MaxPage = 1 << 20

// PostService handles blog post business logic
type PostService struct {
	postRepo *repository.PostRepository
	userRepo *repository.UserRepository
	now      core.Clock
}

// NewPostService creates a new post service
func NewPostService(postRepo *repository.PostRepository, userRepo *repository.UserRepository, clock core.Clock) *PostService {
	if clock == nil {
		clock = core.SystemClock
	}
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		now:      clock,
	}
}

// CreatePostRequest represents the new post form
type CreatePostRequest struct {
	Title   string `form:"title" json:"title"`
	Content string `form:"content" json:"content"`
}

// PostPage là một trang danh sách bài viết
type PostPage struct {
	Posts      []models.Post `json:"posts"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

// Create tạo bài viết mới, date_posted là thời điểm hiện tại (UTC)
func (s *PostService) Create(ctx context.Context, userID uint, req CreatePostRequest) (*models.Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validationError(
		utils.ValidateLength("title", req.Title, 1, 100),
		utils.ValidateLength("content", req.Content, 1, 0),
	); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, msgUserNotFound)
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to load post author")
	}

	post := &models.Post{
		Title:      req.Title,
		Content:    req.Content,
		UserID:     userID,
		DatePosted: s.now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, goerrorkit.WrapWithMessage(err, "Failed to create post").WithData(map[string]interface{}{
			"user_id": userID,
		})
	}

	metrics.PostsCreatedTotal.Inc()
	return post, nil
}

// GetByID gets a post with its author
func (s *PostService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, "Post not found")
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to load post")
	}
	return post, nil
}

// List lists posts newest first
func (s *PostService) List(ctx context.Context, page, perPage int) (*PostPage, error) {
	page, perPage = normalizePage(page, perPage)
	posts, total, err := s.postRepo.List(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, goerrorkit.WrapWithMessage(err, "Failed to list posts")
	}
	return newPostPage(posts, total, page, perPage), nil
}

// ListByAuthor lists posts of the user with the given username
func (s *PostService) ListByAuthor(ctx context.Context, username string, page, perPage int) (*models.User, *PostPage, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, newError(KindNotFound, msgUserNotFound)
		}
		return nil, nil, goerrorkit.WrapWithMessage(err, "Failed to load user")
	}

	page, perPage = normalizePage(page, perPage)
	posts, total, err := s.postRepo.ListByAuthor(ctx, user.ID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, nil, goerrorkit.WrapWithMessage(err, "Failed to list posts of user").WithData(map[string]interface{}{
			"user_id": user.ID,
		})
	}
	return user, newPostPage(posts, total, page, perPage), nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if perPage < 1 || perPage > 100 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func newPostPage(posts []models.Post, total int64, page, perPage int) *PostPage {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &PostPage{
		Posts:      posts,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
