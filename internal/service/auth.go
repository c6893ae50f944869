package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

const tokenTTL = 24 * time.Hour

// AuthService issues and validates JWT tokens. Revoked tokens are tracked in
// a Redis denylist until they expire; when no Redis client is configured
// (local development, unit tests) logout simply has no server-side effect.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user and returns a token for the new session.
func (s *AuthService) Register(ctx context.Context, email, username, firstName, lastName, password string) (string, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).
		Where("email = ? OR username = ?", email, username).
		First(&existing).Error; err == nil {
		return "", ErrAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := models.User{
		Email:        email,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hashed),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return "", ErrAlreadyExists
		}
		return "", err
	}

	return s.generateToken(&user)
}

// Login verifies the credentials and returns a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.generateToken(&user)
}

// Logout revokes the token by adding it to the Redis denylist for the rest
// of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}

	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}

	ttl := tokenTTL
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ttl = time.Until(exp.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, denylistKey(token), "revoked", ttl).Err()
}

// ValidateToken parses and verifies a token, rejecting revoked ones.
func (s *AuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		n, err := s.redis.Exists(context.Background(), denylistKey(token)).Result()
		if err == nil && n > 0 {
			return nil, ErrTokenRevoked
		}
	}

	return claims, nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   user.ID,
		Username: user.Username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) parseToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func denylistKey(token string) string {
	return "auth:denylist:" + token
}
