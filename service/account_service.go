package service

import (
	"context"
	"strings"

	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/blogkit/metrics"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/repository"
	"github.com/techmaster-vietnam/blogkit/utils"
	"github.com/techmaster-vietnam/goerrorkit"
)

const (
	msgUsernameTaken      = "That username is taken. Please choose a different one."
	msgEmailTaken         = "That email is taken. Please choose a different one."
	msgInvalidCredentials = "Login Unsuccessful. Please check username and password"
	msgUserNotFound       = "User not found"
)

// AccountService quản lý user: đăng ký, đăng nhập, cập nhật profile
type AccountService struct {
	userRepo *repository.UserRepository
	avatars  core.AvatarStorage
	password config.PasswordConfig
}

// NewAccountService creates a new account service
func NewAccountService(userRepo *repository.UserRepository, avatars core.AvatarStorage, password config.PasswordConfig) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		avatars:  avatars,
		password: password,
	}
}

// RegisterRequest represents the registration form
type RegisterRequest struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Register validate form, hash password rồi tạo user
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := validationError(
		utils.ValidateUsername(req.Username),
		utils.ValidateEmail(req.Email),
		utils.ValidatePassword(req.Password, s.password),
		utils.ValidateConfirmPassword(req.Password, req.ConfirmPassword),
	); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, goerrorkit.WrapWithMessage(err, "Failed to hash password")
	}

	user, err := s.Create(ctx, req.Username, req.Email, hashedPassword)
	if err != nil {
		if IsKind(err, KindDuplicateKey) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// Create tạo user với password đã hash. Username/email trùng trả về KindDuplicateKey, không tạo row.
func (s *AccountService) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	if err := s.checkAvailable(ctx, username, email, 0); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		ImageFile: models.DefaultImageFile,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Hai request đăng ký cùng lúc vượt qua pre-check, unique index chặn lại
		if repository.IsUniqueViolation(err) {
			return nil, &Error{Kind: KindDuplicateKey, Message: "That username or email is taken. Please choose a different one."}
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to create user").WithData(map[string]interface{}{
			"username": username,
		})
	}

	return user, nil
}

func (s *AccountService) checkAvailable(ctx context.Context, username, email string, excludeID uint) error {
	taken, err := s.userRepo.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to check username")
	}
	if taken {
		return &Error{Kind: KindDuplicateKey, Field: "username", Message: msgUsernameTaken}
	}

	taken, err = s.userRepo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to check email")
	}
	if taken {
		return &Error{Kind: KindDuplicateKey, Field: "email", Message: msgEmailTaken}
	}
	return nil
}

// Authenticate trả về user khi email và password đúng.
// Email không tồn tại và sai password trả về cùng một lỗi KindInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, newError(KindInvalidCredentials, msgInvalidCredentials)
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to load user for login")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, newError(KindInvalidCredentials, msgInvalidCredentials)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// GetByID gets a user by ID
func (s *AccountService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, msgUserNotFound)
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to load user")
	}
	return user, nil
}

// GetByUsername gets a user by username
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, msgUserNotFound)
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to load user")
	}
	return user, nil
}

// Upload là file ảnh đại diện nhận từ form multipart
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UpdateProfileRequest represents the account form
type UpdateProfileRequest struct {
	Username string  `form:"username" json:"username"`
	Email    string  `form:"email" json:"email"`
	Picture  *Upload `form:"-" json:"-"`
}

// UpdateProfile validate form, lưu ảnh (nếu có) rồi ghi đè profile
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var pictureErr error
	if req.Picture != nil {
		pictureErr = utils.ValidatePictureName(req.Picture.Filename)
	}
	if err := validationError(
		utils.ValidateUsername(req.Username),
		utils.ValidateEmail(req.Email),
		pictureErr,
	); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, req.Username, req.Email, userID); err != nil {
		return nil, err
	}

	avatarRef := ""
	if req.Picture != nil {
		ref, err := s.avatars.Store(ctx, req.Picture.Filename, req.Picture.ContentType, req.Picture.Data)
		if err != nil {
			return nil, goerrorkit.WrapWithMessage(err, "Failed to store profile picture").WithData(map[string]interface{}{
				"user_id":  userID,
				"filename": req.Picture.Filename,
			})
		}
		avatarRef = ref
	}

	user, err := s.Update(ctx, userID, req.Username, req.Email, avatarRef)
	if err != nil && avatarRef != "" {
		// Ảnh mới không được gắn vào user nào
		if delErr := s.avatars.Delete(ctx, avatarRef); delErr != nil {
			goerrorkit.LogError(goerrorkit.WrapWithMessage(delErr, "Failed to remove orphaned profile picture").WithData(map[string]interface{}{
				"user_id": userID,
				"ref":     avatarRef,
			}), "AccountService.UpdateProfile")
		}
	}
	return user, err
}

// Update ghi đè username, email và avatar. avatarRef rỗng giữ nguyên avatar hiện tại.
// Uniqueness do constraint của database đảm bảo, vi phạm trả về KindDuplicateKey.
func (s *AccountService) Update(ctx context.Context, userID uint, username, email, avatarRef string) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if avatarRef == "" {
		avatarRef = user.ImageFile
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, username, email, avatarRef); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, newError(KindDuplicateKey, "That username or email is taken. Please choose a different one.")
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to update account").WithData(map[string]interface{}{
			"user_id": userID,
		})
	}

	user.Username = username
	user.Email = email
	user.ImageFile = avatarRef
	return user, nil
}

// AvatarURL trả về URL public của avatar user
func (s *AccountService) AvatarURL(user *models.User) string {
	return s.avatars.URL(user.ImageFile)
}
