package auth

import (
	"context"
	"time"

	"bank-core/internal/model"
	"bank-core/internal/repository"
	"bank-core/pkg/cache"
	"bank-core/pkg/errno"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionPrefix = "session:"
	sessionTTL    = 24 * time.Hour
)

// Session 登录会话，缓存在 token 下
type Session struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username    string
	Password    string
	Email       string
	FullName    string
	PhoneNumber string
}

// LoginResult 登录结果
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type Service struct {
	scope    repository.TxScope
	sessions cache.Cache
}

func NewService(scope repository.TxScope, sessions cache.Cache) *Service {
	return &Service{scope: scope, sessions: sessions}
}

// Register 注册新用户: bcrypt 哈希密码，verified=false 等待验证。
// 引擎此后不再接触明文密码。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Username == "" || in.Email == "" {
		return nil, errno.ErrValidation.WithMessage("Username and email are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errno.InternalServerError.WithMessage(err.Error())
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: string(hashed),
		Email:        in.Email,
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		Verified:     false,
		Enabled:      true,
		Role:         model.RoleUser,
		CreatedAt:    time.Now(),
	}

	err = s.scope.Run(ctx, func(r repository.Repos) error {
		exists, err := r.Users.ExistsByUsername(ctx, in.Username)
		if err != nil {
			return err
		}
		if exists {
			return errno.ErrUserAlreadyExist
		}
		exists, err = r.Users.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if exists {
			return errno.ErrUserAlreadyExist
		}
		return r.Users.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验密码与账户状态后签发会话 token (uuid)，写入缓存。
// 未验证 / 被禁用的用户拒绝登录。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var user *model.User
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		var err error
		user, err = r.Users.FindByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errno.ErrPasswordIncorrect
	}
	if !user.Verified {
		return nil, errno.ErrUserNotVerified
	}
	if !user.Enabled {
		return nil, errno.ErrUserDisabled
	}

	token := uuid.New().String()
	sess := Session{UserID: user.ID, Username: user.Username}
	if err := s.sessions.Set(ctx, sessionPrefix+token, sess, sessionTTL); err != nil {
		return nil, errno.InternalServerError.WithMessage(err.Error())
	}

	return &LoginResult{
		Token:    token,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
	}, nil
}

// Verify 将用户标记为已验证 (管理操作)
func (s *Service) Verify(ctx context.Context, username string) (string, error) {
	err := s.scope.Run(ctx, func(r repository.Repos) error {
		user, err := r.Users.FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		user.Verified = true
		return r.Users.Save(ctx, user)
	})
	if err != nil {
		return "", err
	}
	return "User verified successfully", nil
}

// Resolve 根据会话 token 解析用户名；token 无效返回 errno.ErrTokenInvalid
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	var sess Session
	if err := s.sessions.Get(ctx, sessionPrefix+token, &sess); err != nil {
		return "", errno.ErrTokenInvalid
	}
	return sess.Username, nil
}
