package admin

import (
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"go.uber.org/zap"
)

type UserService interface {
	GetUserProfile(userID uint64) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

var _ UserService = (*userService)(nil)

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUserProfile(userID uint64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Error("GetUserProfile: Error retrieving user from DB",
			zap.Uint64("userID", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	if user == nil {
		logger.Warn("GetUserProfile: User not found", zap.Uint64("userID", userID))
		return nil, xerr.ErrUserNotFound
	}
	return user, nil
}
