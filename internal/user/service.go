package user

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidInput 表示注册/登录的必填字段为空
	ErrInvalidInput = errors.New("用户名和密码不能为空")
	// ErrInvalidCredentials 表示用户名或密码错误。
	// 用户不存在和密码错误返回同一个错误，避免泄露用户名是否已注册。
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)

// Service 实现注册和登录的业务逻辑
type Service struct {
	repo *Repository
}

// NewService 构造一个用户服务
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Signup 注册新用户。密码用bcrypt加盐哈希后落库，明文不做任何持久化。
func (s *Service) Signup(username, password, email, phone string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Phone:        phone,
	}
	if err := s.repo.CreateUser(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// Login 校验用户名和密码，成功时返回用户记录
func (s *Service) Login(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	u, err := s.repo.GetUser(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
