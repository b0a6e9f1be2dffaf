package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kylewspence/FinSight/internal/config"
	"github.com/kylewspence/FinSight/internal/models"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/pkg/apperror"
	"github.com/kylewspence/FinSight/pkg/crypto"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.Unauthorized, "Invalid user name or password")
	ErrUserNameTaken      = apperror.New(apperror.Conflict, "User name already taken")
	ErrInvalidToken       = apperror.New(apperror.Unauthorized, "Invalid or expired token")
)

// Identity is the authenticated caller, passed explicitly into every
// owner-scoped service call.
type Identity struct {
	UserID   uint
	UserName string
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo  *repository.UserRepository
	jwtConfig config.JWTConfig
	now       func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *repository.UserRepository, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtConfig: jwtConfig,
		now:       time.Now,
	}
}

// Credentials is the register and login request body
type Credentials struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Claims is the session token payload
type Claims struct {
	UserID   uint   `json:"userId"`
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

// Register creates a user and issues a session token
func (s *AuthService) Register(ctx context.Context, req Credentials) (*AuthResult, error) {
	userName := strings.TrimSpace(req.UserName)
	if userName == "" || req.Password == "" {
		return nil, apperror.New(apperror.BadRequest, "userName and password are required fields")
	}

	exists, err := s.userRepo.ExistsByUserName(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("check user name: %w", err)
	}
	if exists {
		return nil, ErrUserNameTaken
	}

	hashed, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserName:       userName,
		HashedPassword: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserNameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a session token.
// Unknown users and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req Credentials) (*AuthResult, error) {
	userName := strings.TrimSpace(req.UserName)
	if userName == "" || req.Password == "" {
		return nil, apperror.New(apperror.BadRequest, "userName and password are required fields")
	}

	user, err := s.userRepo.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !crypto.CheckPassword(req.Password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// VerifyToken validates a session token and returns the caller identity
func (s *AuthService) VerifyToken(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: claims.UserID, UserName: claims.UserName}, nil
}

// CurrentUser returns the user row for the caller
func (s *AuthService) CurrentUser(ctx context.Context, id Identity) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// generateToken generates a signed session token for a user
func (s *AuthService) generateToken(user *models.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   user.ID,
		UserName: user.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.TokenTTL())),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "finsight",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
