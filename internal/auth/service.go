package auth

import (
	"gorm.io/gorm"

	"arsip-api/config"
)

type AuthService struct {
	DB  *gorm.DB
	CFG *config.Config
}

func (s *AuthService) GetUser(username string) (*User, error) {
	var user User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) GetUserByID(id int64) (*User, error) {
	var user User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
