package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/hotel-backoffice/models"
	"github.com/yeremiapane/hotel-backoffice/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthService struct {
	base
	tokens utils.TokenStore
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", validation("password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a guest account.
func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    normalizeEmail(in.Email),
		Password: hashed,
		Role:     models.RoleGuest,
		Phone:    in.Phone,
		Address:  in.Address,
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("email %s is already registered", user.Email)
		}
		return nil, err
	}
	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	return &user, nil
}

// Login checks credentials and issues a JWT.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, claims, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	user.LastLoginAt = s.timestamp()
	if err := s.db.Model(&user).Update("last_login_at", user.LastLoginAt).Error; err != nil {
		utils.ErrorLogger.Errorf("Failed to record login time for %s: %v", user.Email, err)
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: &user}, nil
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return ErrUnauthorized
	}
	return s.tokens.Revoke(ctx, token, claims.ExpiresAt.Time)
}

// Authenticate validates a bearer token against signature, expiry, the
// revocation list and the account state.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*utils.CustomClaims, error) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	revoked, err := s.tokens.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, newError(ErrUnauthorized, "token has been revoked")
	}
	var user models.User
	if err := s.db.Select("id", "role", "is_active").First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	// A role change takes effect immediately.
	claims.Role = user.Role
	return claims, nil
}

func (s *AuthService) Me(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (s *AuthService) ChangePassword(userID uint, current, next string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return notFound(err, "user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return newError(ErrValidation, "current password is incorrect")
	}
	hashed, err := hashPassword(next)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Update("password", hashed).Error
}
