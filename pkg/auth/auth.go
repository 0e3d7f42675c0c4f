package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/energy-dashboard-service/pkg/common"
	"liyu1981.xyz/energy-dashboard-service/pkg/models"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

var (
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("not authorized")
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Result is a freshly issued bearer token and its owner.
type Result struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

type IAuth interface {
	Signup(ctx context.Context, in SignupInput) (*Result, error)
	Login(ctx context.Context, email, password string) (*Result, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, token string) error
}

type Auth struct {
	Conn       *gorm.DB
	SessionTTL time.Duration
	// AdminEmails get the admin role at signup.
	AdminEmails map[string]bool
	Now         func() time.Time
}

func New(conn *gorm.DB, sessionTTL time.Duration, adminEmails ...string) *Auth {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = true
		}
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Auth{Conn: conn, SessionTTL: sessionTTL, AdminEmails: admins}
}

func logger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameAuth,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySession),
	)
}

func (a *Auth) now() time.Time {
	if a.Now == nil {
		return time.Now().UTC()
	}
	return a.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (a *Auth) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	email := normalizeEmail(in.Email)

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if a.AdminEmails[email] {
		user.Role = models.RoleAdmin
	}

	err = a.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if !errors.Is(err, ErrEmailTaken) {
			logger().Error("Failed to create user", zap.Error(err))
		}
		return nil, err
	}

	logger().Info("User signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	return a.issue(ctx, user)
}

func (a *Auth) Login(ctx context.Context, email, password string) (*Result, error) {
	var users []models.User
	err := a.Conn.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Limit(1).Find(&users).Error
	if err != nil {
		return nil, err
	}
	if len(users) == 0 || !VerifyPassword(password, users[0].PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	user := users[0]

	now := a.now()
	if err := a.Conn.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return a.issue(ctx, user)
}

func (a *Auth) issue(ctx context.Context, user models.User) (*Result, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	session := models.Session{
		TokenHash: hashToken(token),
		UserID:    user.ID,
		ExpiresAt: a.now().Add(a.SessionTTL),
	}
	if err := a.Conn.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Result{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to its user. Unknown and expired
// tokens are ErrUnauthorized; expired sessions are removed.
func (a *Auth) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var sessions []models.Session
	conn := a.Conn.WithContext(ctx)
	if err := conn.Where("token_hash = ?", hashToken(token)).Limit(1).Find(&sessions).Error; err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrUnauthorized
	}

	session := sessions[0]
	if !session.ExpiresAt.After(a.now()) {
		if err := conn.Delete(&session).Error; err != nil {
			logger().Warn("Failed to remove expired session", zap.String("user_id", session.UserID), zap.Error(err))
		}
		return nil, ErrUnauthorized
	}

	var users []models.User
	if err := conn.Where("id = ?", session.UserID).Limit(1).Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUnauthorized
	}
	return &users[0], nil
}

func (a *Auth) Logout(ctx context.Context, token string) error {
	return a.Conn.WithContext(ctx).Where("token_hash = ?", hashToken(token)).Delete(&models.Session{}).Error
}

var _ IAuth = (*Auth)(nil)
