package user

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService 为每个测试创建独立的内存数据库和用户服务
func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("无法打开测试数据库: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("无法迁移测试数据库: %v", err)
	}
	return NewService(NewRepository(db))
}

func TestSignupHashesPassword(t *testing.T) {
	svc := newTestService(t)

	u, err := svc.Signup("alice", "s3cret", "alice@example.com", "")
	if err != nil {
		t.Fatalf("Signup失败: %v", err)
	}
	if u.Username != "alice" || u.Email != "alice@example.com" {
		t.Fatalf("用户记录不正确: %+v", u)
	}

	// 明文密码不落库
	if u.PasswordHash == "s3cret" {
		t.Fatal("密码不应以明文存储")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("哈希应能校验原始密码: %v", err)
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Signup("alice", "first", "", ""); err != nil {
		t.Fatalf("首次Signup失败: %v", err)
	}
	if _, err := svc.Signup("alice", "second", "", ""); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("期望 ErrUsernameTaken, 实际: %v", err)
	}

	// 原记录不受影响，仍可用原密码登录
	if _, err := svc.Login("alice", "first"); err != nil {
		t.Fatalf("重复注册不应破坏原账号: %v", err)
	}
}

func TestSignupRejectsEmptyFields(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Signup("", "pw", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("空用户名期望 ErrInvalidInput, 实际: %v", err)
	}
	if _, err := svc.Signup("   ", "pw", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("全空白用户名期望 ErrInvalidInput, 实际: %v", err)
	}
	if _, err := svc.Signup("alice", "", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("空密码期望 ErrInvalidInput, 实际: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Signup("alice", "s3cret", "", ""); err != nil {
		t.Fatalf("Signup失败: %v", err)
	}

	u, err := svc.Login("alice", "s3cret")
	if err != nil {
		t.Fatalf("Login失败: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("返回的用户不正确: %+v", u)
	}

	// 密码错误和用户不存在返回同一个错误
	if _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("密码错误期望 ErrInvalidCredentials, 实际: %v", err)
	}
	if _, err := svc.Login("nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("用户不存在期望 ErrInvalidCredentials, 实际: %v", err)
	}
}

func TestCreateUserRejectsMissingUsername(t *testing.T) {
	svc := newTestService(t)

	if err := svc.repo.CreateUser(&User{PasswordHash: "x"}); !errors.Is(err, ErrMissingUsername) {
		t.Fatalf("空用户名期望 ErrMissingUsername, 实际: %v", err)
	}
	if err := svc.repo.CreateUser(nil); !errors.Is(err, ErrMissingUsername) {
		t.Fatalf("nil记录期望 ErrMissingUsername, 实际: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.repo.GetUser("nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("期望 ErrUserNotFound, 实际: %v", err)
	}
}
