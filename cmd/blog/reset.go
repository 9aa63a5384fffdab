package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/goerrorkit"
	"gorm.io/gorm"
)

// resetDatabase xóa toàn bộ bảng của blog và lịch sử migration.
// CẢNH BÁO: mất hết dữ liệu. Chỉ chạy khi RESET_DB=true.
func resetDatabase(db *gorm.DB) error {
	if os.Getenv("RESET_DB") != "true" {
		return nil
	}

	logrus.Warn("Resetting database (RESET_DB=true is set)")

	// Thứ tự ngược với foreign key
	tables := []interface{}{
		&models.PasswordResetToken{},
		&models.Post{},
		&models.User{},
		"schema_migrations",
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return goerrorkit.WrapWithMessage(err, "Failed to drop table").WithData(map[string]interface{}{
				"table": table,
			})
		}
	}

	logrus.Info("Database reset completed successfully")
	return nil
}
