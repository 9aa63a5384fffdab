package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/service"
	"github.com/techmaster-vietnam/blogkit/session"
)

const msgPostCreated = "Your post has been created!"

// PostHandler handles blog post pages
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Home lists posts newest first
// GET /?page=1
func (h *PostHandler) Home(c *fiber.Ctx, sc *session.Context) error {
	page, err := h.posts.List(c.UserContext(), c.QueryInt("page", 1), service.DefaultPerPage)
	if err != nil {
		return err
	}
	return render(c, sc, fiber.StatusOK, "home", fiber.Map{"posts": page})
}

// Post renders a single post
// GET /post/:id
func (h *PostHandler) Post(c *fiber.Ctx, sc *session.Context) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return notFound(c, sc, "Post not found")
	}

	post, err := h.posts.GetByID(c.UserContext(), uint(id))
	if err != nil {
		if svcErr, ok := service.AsError(err); ok && svcErr.Kind == service.KindNotFound {
			return notFound(c, sc, svcErr.Message)
		}
		return err
	}
	return render(c, sc, fiber.StatusOK, "post", fiber.Map{
		"title": post.Title,
		"post":  post,
	})
}

// NewPostPage renders the new post form
// GET /post/new
func (h *PostHandler) NewPostPage(c *fiber.Ctx, sc *session.Context) error {
	return render(c, sc, fiber.StatusOK, "create_post", fiber.Map{
		"title":  "New Post",
		"legend": "New Post",
	})
}

// CreatePost handles new post form
// POST /post/new
func (h *PostHandler) CreatePost(c *fiber.Ctx, sc *session.Context) error {
	var req service.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidForm(err)
	}

	if _, err := h.posts.Create(c.UserContext(), sc.User.ID, req); err != nil {
		if svcErr, ok := service.AsError(err); ok && svcErr.Kind == service.KindValidation {
			return render(c, sc, fiber.StatusUnprocessableEntity, "create_post", fiber.Map{
				"title":  "New Post",
				"legend": "New Post",
				"form":   fiber.Map{"title": req.Title, "content": req.Content},
				"errors": svcErr.Fields,
			})
		}
		return err
	}

	return flashRedirect(c, sc, session.FlashSuccess, msgPostCreated, "/")
}

// UserPosts lists posts of one author
// GET /user/:username?page=1
func (h *PostHandler) UserPosts(c *fiber.Ctx, sc *session.Context) error {
	user, page, err := h.posts.ListByAuthor(c.UserContext(), c.Params("username"), c.QueryInt("page", 1), service.DefaultPerPage)
	if err != nil {
		if svcErr, ok := service.AsError(err); ok && svcErr.Kind == service.KindNotFound {
			return notFound(c, sc, svcErr.Message)
		}
		return err
	}
	return render(c, sc, fiber.StatusOK, "user_posts", fiber.Map{
		"user":  publicUser(user),
		"posts": page,
	})
}

// publicUser là phần profile hiển thị được cho mọi visitor
func publicUser(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"image_file": user.ImageFile,
	}
}

func notFound(c *fiber.Ctx, sc *session.Context, message string) error {
	return render(c, sc, fiber.StatusNotFound, "errors/404", fiber.Map{"message": message})
}
