package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/utils"
	"github.com/techmaster-vietnam/goerrorkit"
	"gorm.io/gorm"
)

// seedData tạo user và bài viết demo khi SEED_DATA=true. Chạy lại nhiều lần không tạo trùng.
func seedData(db *gorm.DB) error {
	if os.Getenv("SEED_DATA") != "true" {
		return nil
	}

	users, err := initUsers(db)
	if err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to initialize users").
			WithData(map[string]interface{}{
				"operation": "init_users",
			})
	}

	if err := initPosts(db, users); err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to initialize posts").
			WithData(map[string]interface{}{
				"operation": "init_posts",
			})
	}
	return nil
}

func initUsers(db *gorm.DB) ([]*models.User, error) {
	testUsers := []struct {
		username string
		email    string
		password string
	}{
		{username: "corey", email: "corey@gmail.com", password: "123456"},
		{username: "tester", email: "tester@gmail.com", password: "123456"},
	}

	var users []*models.User
	for _, userData := range testUsers {
		hashedPassword, err := utils.HashPassword(userData.password)
		if err != nil {
			return nil, goerrorkit.WrapWithMessage(err, fmt.Sprintf("Failed to hash password for user %s", userData.email))
		}

		user := &models.User{
			Username:  userData.username,
			Email:     userData.email,
			Password:  hashedPassword,
			ImageFile: models.DefaultImageFile,
		}

		// FirstOrCreate: tìm theo Email, nếu không có thì tạo mới
		result := db.Where("email = ?", userData.email).FirstOrCreate(user)
		if result.Error != nil {
			return nil, goerrorkit.WrapWithMessage(result.Error, fmt.Sprintf("Failed to initialize user %s", userData.email)).
				WithData(map[string]interface{}{
					"email": userData.email,
				})
		}
		if result.RowsAffected > 0 {
			logrus.WithField("email", userData.email).Info("Created user")
		}
		users = append(users, user)
	}
	return users, nil
}

func initPosts(db *gorm.DB, users []*models.User) error {
	now := time.Now().UTC()
	for i, user := range users {
		var count int64
		if err := db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		for j := 1; j <= 3; j++ {
			post := &models.Post{
				Title:      fmt.Sprintf("Blog post %d by %s", j, user.Username),
				Content:    "That's it. That's the post.",
				UserID:     user.ID,
				DatePosted: now.Add(-time.Duration(i*3+j) * time.Hour),
			}
			if err := db.Create(post).Error; err != nil {
				return goerrorkit.WrapWithMessage(err, "Failed to create demo post").
					WithData(map[string]interface{}{
						"user_id": user.ID,
					})
			}
		}
	}
	return nil
}
