package admin

import (
	"errors"
	"fmt"

	"github.com/3Eeeecho/go-filelabel/internal/config"
	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/logger"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/utils"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=40"`
	Surname  string `json:"surname" binding:"required,max=40"`
	Username string `json:"username" binding:"required,max=40"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
}

type AuthService interface {
	RegisterUser(in RegisterInput) (*models.User, error)
	LoginUser(identifier, password string) (string, error)
}

type authService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// 确保authService实现了AuthService的方法
var _ AuthService = (*authService)(nil)

func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *authService) RegisterUser(in RegisterInput) (*models.User, error) {
	// 检查用户名是否存在
	existingUser, err := s.userRepo.GetUserByUsername(in.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if existingUser != nil {
		return nil, fmt.Errorf("用户名 %s: %w", in.Username, xerr.ErrUserAlreadyExists)
	}

	// 检查邮箱是否存在
	existingUser, err = s.userRepo.GetUserByEmail(in.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existingUser != nil {
		return nil, fmt.Errorf("邮箱 %s: %w", in.Email, xerr.ErrEmailAlreadyExists)
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Surname:      in.Surname,
		Username:     in.Username,
		PasswordHash: hashedPassword,
		Email:        in.Email,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user in database: %w", err)
	}

	logger.Info("user registered", zap.String("username", user.Username))
	return user, nil
}

func (s *authService) LoginUser(identifier, password string) (string, error) {
	// 先按用户名查找,找不到再按邮箱
	user, err := s.userRepo.GetUserByUsername(identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to get user by username: %w", err)
		}
		user, err = s.userRepo.GetUserByEmail(identifier)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", xerr.ErrInvalidCredentials
			}
			return "", fmt.Errorf("failed to get user by email: %w", err)
		}
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", xerr.ErrInvalidCredentials
	}

	tokenString, err := utils.GenerateToken(
		user.ID,
		user.Username,
		user.Email,
		s.cfg.JWT.SecretKey,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.ExpiresIn,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}
