package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/techmaster-vietnam/blogkit/models"
	"gorm.io/gorm"
)

// PasswordResetTokenRepository handles password reset token database operations
type PasswordResetTokenRepository struct {
	db *gorm.DB
}

// NewPasswordResetTokenRepository creates a new password reset token repository
func NewPasswordResetTokenRepository(db *gorm.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// WithTx trả về repository dùng transaction tx
func (r *PasswordResetTokenRepository) WithTx(tx *gorm.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: tx}
}

// HashToken tạo hash của token để lưu trong database
// Không lưu plain token để bảo mật
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Create tạo mới password reset token ở trạng thái chưa kích hoạt
// token: plain reset token (sẽ được hash trước khi lưu)
// Nếu user đã có token chưa kích hoạt, partial unique index trả về lỗi duplicate
func (r *PasswordResetTokenRepository) Create(ctx context.Context, token string, userID uint, createdAt time.Time) (*models.PasswordResetToken, error) {
	resetToken := &models.PasswordResetToken{
		ResetKey:     HashToken(token),
		UserID:       userID,
		CreatedAt:    createdAt,
		HasActivated: false,
	}

	if err := r.db.WithContext(ctx).Create(resetToken).Error; err != nil {
		return nil, err
	}

	return resetToken, nil
}

// GetByToken tìm password reset token theo plain token (hash trước khi tìm)
func (r *PasswordResetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var resetToken models.PasswordResetToken
	err := r.db.WithContext(ctx).Where("reset_key = ?", HashToken(token)).First(&resetToken).Error
	if err != nil {
		return nil, err
	}
	return &resetToken, nil
}

// GetPendingByUserID tìm token chưa kích hoạt của user
func (r *PasswordResetTokenRepository) GetPendingByUserID(ctx context.Context, userID uint) (*models.PasswordResetToken, error) {
	var resetToken models.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND has_activated = ?", userID, false).
		First(&resetToken).Error
	if err != nil {
		return nil, err
	}
	return &resetToken, nil
}

// Activate đánh dấu token đã dùng bằng conditional update.
// Trả về false khi token đã được kích hoạt trước đó (hoặc không còn tồn tại).
func (r *PasswordResetTokenRepository) Activate(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PasswordResetToken{}).
		Where("id = ? AND has_activated = ?", id, false).
		Update("has_activated", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete xóa token theo ID
func (r *PasswordResetTokenRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PasswordResetToken{}).Error
}

// DeleteCreatedBefore xóa mọi token tạo trước hoặc đúng cutoff (cleanup job)
func (r *PasswordResetTokenRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at <= ?", cutoff).Delete(&models.PasswordResetToken{})
	return result.RowsAffected, result.Error
}
