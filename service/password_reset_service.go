package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/blogkit/metrics"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/repository"
	"github.com/techmaster-vietnam/blogkit/utils"
	"github.com/techmaster-vietnam/goerrorkit"
	"gorm.io/gorm"
)

const (
	msgResetEmailNotFound   = "No data found for this email"
	msgResetTokenNotFound   = "No reset link generated!!! Please generate one."
	msgResetTokenUsed       = "link already used once!!! Please generate a new one."
	msgResetTokenExpired    = "link has been expired!!! Please request for a new reset link."
	msgResetMailUnavailable = "Could not send the reset email right now. Please try again later."
)

// ResetOutcome là kết quả của một yêu cầu reset password thành công về mặt nghiệp vụ
type ResetOutcome string

const (
	// ResetSent: token mới được tạo và email đã được xếp hàng gửi
	ResetSent ResetOutcome = "sent"
	// ResetAlreadySent: user đang có token chưa hết hạn, không tạo token mới
	ResetAlreadySent ResetOutcome = "already_sent"
	// ResetPreviousExpired: token cũ đã hết hạn và bị xóa, user cần yêu cầu lại
	ResetPreviousExpired ResetOutcome = "previous_expired"
)

// PasswordResetService điều khiển vòng đời reset token: NONE -> PENDING -> CONSUMED | EXPIRED
type PasswordResetService struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	tokenRepo *repository.PasswordResetTokenRepository
	sender    core.NotificationSender
	password  config.PasswordConfig
	baseURL   string
	ttl       time.Duration
	now       core.Clock
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	tokenRepo *repository.PasswordResetTokenRepository,
	sender core.NotificationSender,
	cfg *config.Config,
	clock core.Clock,
) *PasswordResetService {
	if clock == nil {
		clock = core.SystemClock
	}
	ttl := cfg.Reset.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PasswordResetService{
		db:        db,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		sender:    sender,
		password:  cfg.Password,
		baseURL:   strings.TrimRight(cfg.Server.BaseURL, "/"),
		ttl:       ttl,
		now:       clock,
	}
}

// ResetLink build URL reset password gửi trong email
func (s *PasswordResetService) ResetLink(token string) string {
	return s.baseURL + "/resetpw/" + token
}

// RequestReset tạo token và gửi email reset password cho user có email này.
// Email không tồn tại trả về KindNotFound.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (ResetOutcome, error) {
	email = strings.TrimSpace(email)
	if err := validationError(utils.ValidateEmail(email)); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.PasswordResetRequestsTotal.WithLabelValues("not_found").Inc()
			return "", newError(KindNotFound, msgResetEmailNotFound)
		}
		return "", goerrorkit.WrapWithMessage(err, "Failed to load user for password reset")
	}

	now := s.now()

	pending, err := s.tokenRepo.GetPendingByUserID(ctx, user.ID)
	switch {
	case err == nil:
		if pending.IsExpired(now, s.ttl) {
			if err := s.tokenRepo.Delete(ctx, pending.ID); err != nil {
				return "", goerrorkit.WrapWithMessage(err, "Failed to delete expired reset token")
			}
			return s.outcome(ResetPreviousExpired), nil
		}
		return s.outcome(ResetAlreadySent), nil
	case !repository.IsNotFound(err):
		return "", goerrorkit.WrapWithMessage(err, "Failed to load pending reset token")
	}

	token := newResetToken()
	created, err := s.tokenRepo.Create(ctx, token, user.ID, now)
	if err != nil {
		// Request song song đã tạo token PENDING trước, partial unique index chặn token thứ hai
		if repository.IsUniqueViolation(err) {
			return s.outcome(ResetAlreadySent), nil
		}
		return "", goerrorkit.WrapWithMessage(err, "Failed to save reset token").WithData(map[string]interface{}{
			"user_id": user.ID,
		})
	}

	if err := s.sender.SendPasswordResetLink(ctx, user.Email, s.ResetLink(token)); err != nil {
		goerrorkit.LogError(goerrorkit.WrapWithMessage(err, "Failed to queue password reset email").WithData(map[string]interface{}{
			"user_id": user.ID,
		}), "PasswordResetService.RequestReset")
		// Xóa token để user có thể yêu cầu lại ngay
		if delErr := s.tokenRepo.Delete(ctx, created.ID); delErr != nil {
			return "", goerrorkit.WrapWithMessage(delErr, "Failed to roll back reset token")
		}
		metrics.PasswordResetRequestsTotal.WithLabelValues("unavailable").Inc()
		return "", newError(KindUnavailable, msgResetMailUnavailable)
	}

	return s.outcome(ResetSent), nil
}

func (s *PasswordResetService) outcome(o ResetOutcome) ResetOutcome {
	metrics.PasswordResetRequestsTotal.WithLabelValues(string(o)).Inc()
	return o
}

// newResetToken trả về 32 ký tự hex từ uuid v4 (crypto/rand)
func newResetToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CheckToken kiểm tra token trước khi hiển thị form đặt lại mật khẩu.
// Token hết hạn (bất kể đã dùng hay chưa) bị xóa và trả về KindExpired.
func (s *PasswordResetService) CheckToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	record, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(KindNotFound, msgResetTokenNotFound)
		}
		return nil, goerrorkit.WrapWithMessage(err, "Failed to load reset token")
	}

	if record.IsExpired(s.now(), s.ttl) {
		if err := s.tokenRepo.Delete(ctx, record.ID); err != nil {
			return nil, goerrorkit.WrapWithMessage(err, "Failed to delete expired reset token").WithData(map[string]interface{}{
				"token_id": record.ID,
			})
		}
		return nil, newError(KindExpired, msgResetTokenExpired)
	}

	if record.HasActivated {
		return nil, newError(KindAlreadyConsumed, msgResetTokenUsed)
	}

	return record, nil
}

// ResetPasswordRequest represents the reset password form
type ResetPasswordRequest struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// ResetPassword đặt lại mật khẩu bằng token. Ghi password và đánh dấu token CONSUMED trong một transaction;
// nếu request khác đã dùng token trước thì trả về KindAlreadyConsumed.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token string, req ResetPasswordRequest) error {
	record, err := s.CheckToken(ctx, token)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	if err := validationError(
		utils.ValidatePassword(req.Password, s.password),
		utils.ValidateConfirmPassword(req.Password, req.ConfirmPassword),
	); err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to hash password")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activated, err := s.tokenRepo.WithTx(tx).Activate(ctx, record.ID)
		if err != nil {
			return goerrorkit.WrapWithMessage(err, "Failed to consume reset token")
		}
		if !activated {
			return newError(KindAlreadyConsumed, msgResetTokenUsed)
		}

		if err := s.userRepo.WithTx(tx).UpdatePassword(ctx, record.UserID, hashedPassword); err != nil {
			return goerrorkit.WrapWithMessage(err, "Failed to update password").WithData(map[string]interface{}{
				"user_id": record.UserID,
			})
		}
		return nil
	})
	if err != nil {
		if IsKind(err, KindAlreadyConsumed) {
			metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("success").Inc()
	return nil
}

// PurgeExpired xóa mọi token đã tồn tại từ TTL trở lên
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.tokenRepo.DeleteCreatedBefore(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, goerrorkit.WrapWithMessage(err, "Failed to purge expired reset tokens")
	}
	metrics.ResetTokensPurgedTotal.Add(float64(deleted))
	return deleted, nil
}

// RunJanitor gọi PurgeExpired theo chu kỳ interval cho tới khi ctx bị hủy
func (s *PasswordResetService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.PurgeExpired(ctx)
			if err != nil {
				goerrorkit.LogError(goerrorkit.WrapWithMessage(err, "Reset token janitor failed"), "PasswordResetService.RunJanitor")
				continue
			}
			if deleted > 0 {
				logrus.WithField("deleted", deleted).Info("Purged expired password reset tokens")
			}
		}
	}
}
