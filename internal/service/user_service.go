package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// ProfileInput 用户可修改的资料
type ProfileInput struct {
	Name     string
	Location string
	AboutMe  string
}

// AdminProfileInput 管理员可修改的资料
type AdminProfileInput struct {
	Email    string
	Username string
	Admin    bool
	ProfileInput
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login 校验密码并签发令牌，同时刷新 last_seen
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// About 返回博客管理员资料
	About(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error)
	AdminUpdate(ctx context.Context, id string, in AdminProfileInput) (*model.User, error)
}

type userService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	cfg    config.BlogConfig
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenIssuer, cfg config.BlogConfig) UserService {
	return &userService{users: users, tokens: tokens, cfg: cfg}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.users.Exists(ctx, email, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now()
	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		Admin:        s.isAdminEmail(email),
		MemberSince:  now,
		LastSeen:     now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user registered", zap.String("user", u.ID), zap.Bool("admin", u.Admin))
	return u, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u.ID, u.Admin)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	u.LastSeen = time.Now()
	if err := s.users.Touch(ctx, u.ID, u.LastSeen); err != nil {
		logger.Warn("update last seen failed", zap.String("user", u.ID), zap.Error(err))
	}
	return token, u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	return u, userErr(err)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	return u, userErr(err)
}

func (s *userService) About(ctx context.Context) (*model.User, error) {
	if s.cfg.AdminEmail == "" {
		return nil, ErrUserNotFound
	}
	u, err := s.users.GetByEmail(ctx, strings.ToLower(s.cfg.AdminEmail))
	return u, userErr(err)
}

func (s *userService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userErr(err)
	}
	u.Name, u.Location, u.AboutMe = in.Name, in.Location, in.AboutMe
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

func (s *userService) AdminUpdate(ctx context.Context, id string, in AdminProfileInput) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userErr(err)
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.ensureFree(ctx, u.ID, email, in.Username); err != nil {
		return nil, err
	}
	u.Email, u.Username, u.Admin = email, in.Username, in.Admin
	u.Name, u.Location, u.AboutMe = in.Name, in.Location, in.AboutMe
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

// ensureFree 邮箱/用户名不能被其他用户占用
func (s *userService) ensureFree(ctx context.Context, selfID, email, username string) error {
	if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != selfID {
		return ErrUserExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if other, err := s.users.GetByUsername(ctx, username); err == nil && other.ID != selfID {
		return ErrUserExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *userService) isAdminEmail(email string) bool {
	return s.cfg.AdminEmail != "" && strings.EqualFold(email, s.cfg.AdminEmail)
}

func userErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
