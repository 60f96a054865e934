package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stockwise-system/internal/database/models"
	sysutils "stockwise-system/internal/utils"
)

const (
	USER_CACHE_PREFIX = "user:"
	ROLE_CACHE_KEY    = "roles:list"
	USER_CACHE_TTL    = 30 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username or email already exists")
	ErrInvalidRole        = errors.New("invalid role specified")
)

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	RoleID    int32  `json:"role_id"`
}

type CreateRoleRequest struct {
	RoleName    string `json:"role_name"`
	AccessLevel int32  `json:"access_level"`
	Permissions string `json:"permissions"`
}

// AuthResult is an issued session: the user plus a signed token.
type AuthResult struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type UserHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	tokenTTL time.Duration
}

func NewUserHandler(db *gorm.DB, redisClient *redis.Client, tokenTTL time.Duration) *UserHandler {
	return &UserHandler{
		db:       db,
		redis:    redisClient,
		tokenTTL: tokenTTL,
	}
}

func (s *UserHandler) InvalidateUserCaches(ctx context.Context, userID ...int64) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, ROLE_CACHE_KEY)
	for _, id := range userID {
		_ = s.redis.Del(ctx, fmt.Sprintf("%s%d", USER_CACHE_PREFIX, id))
	}
}

// Register creates a user and issues a token. Passwords are stored as
// bcrypt hashes only.
func (s *UserHandler) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, errors.New("username, email, and password are required")
	}

	db := s.db.WithContext(ctx)

	var existingUser models.User
	if err := db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existingUser).Error; err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error while checking existing user: %w", err)
	}

	var role models.Role
	if err := db.First(&role, req.RoleID).Error; err != nil {
		return nil, ErrInvalidRole
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	newUser := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(pwHash),
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		RoleID:    req.RoleID,
		IsActive:  true,
	}

	if err := db.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	newUser.Role = role
	newUser.Password = ""

	token, exp, err := sysutils.GenerateToken(newUser.ID, newUser.Username, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	s.InvalidateUserCaches(ctx)

	return &AuthResult{User: newUser, Token: token, ExpiresAt: exp}, nil
}

// Authenticate verifies credentials and issues a token. Lookup failures and
// password mismatches are indistinguishable to the caller.
func (s *UserHandler) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Preload("Role").Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := sysutils.GenerateToken(user.ID, user.Username, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	now := time.Now()
	user.LastLogin = &now
	db.Save(&user)
	user.Password = ""

	s.InvalidateUserCaches(ctx, user.ID)

	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *UserHandler) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func (s *UserHandler) CreateRole(ctx context.Context, req CreateRoleRequest) (*models.Role, error) {
	if req.RoleName == "" {
		return nil, errors.New("role name is required")
	}

	role := models.Role{
		RoleName:    req.RoleName,
		AccessLevel: req.AccessLevel,
		Permissions: req.Permissions,
	}

	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, fmt.Errorf("error creating role: %w", err)
	}

	s.InvalidateUserCaches(ctx)
	return &role, nil
}

func (s *UserHandler) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("error listing roles: %w", err)
	}
	return roles, nil
}
