package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mindcare/internal/config"
	"mindcare/internal/entities"
	"mindcare/internal/interfaces"
	"mindcare/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
)

// Claims are carried by tokens issued by the local identity provider.
// The subject holds the user id; UserID is kept for older clients.
type Claims struct {
	UserID int64  `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthUsecase registers and signs in local accounts and issues HS256 tokens.
type AuthUsecase struct {
	users     interfaces.UserStore
	jwtSecret []byte
	issuer    string
	ttl       time.Duration
	dummyHash []byte
}

func NewAuthUsecase(users interfaces.UserStore, cfg config.AuthConfig) *AuthUsecase {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	// compared against when the user is unknown so both paths cost one bcrypt check
	dummy, _ := bcrypt.GenerateFromPassword([]byte("mindcare-placeholder"), bcrypt.DefaultCost)
	return &AuthUsecase{
		users:     users,
		jwtSecret: []byte(cfg.JWTSecret),
		issuer:    cfg.Issuer,
		ttl:       ttl,
		dummyHash: dummy,
	}
}

func (uc *AuthUsecase) Register(ctx context.Context, username, password string) (*entities.User, error) {
	existing, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         "user",
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login returns a signed token and its expiry.
func (uc *AuthUsecase) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(uc.dummyHash, []byte(password))
		return "", time.Time{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return uc.IssueToken(user)
}

// IssueToken signs a token for user valid for the configured TTL.
func (uc *AuthUsecase) IssueToken(user *entities.User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(uc.ttl)
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    uc.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}
