package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ItsNaunas/E-CTRL-sub001/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidLogin   = errors.New("invalid email or password")
	ErrInvalidToken   = errors.New("invalid or expired token")
)

// AuthService owns user accounts and session tokens.
type AuthService struct {
	db         *sql.DB
	jwtSecret  []byte
	sessionTTL time.Duration
}

// NewAuthService creates an auth service on an existing connection.
func NewAuthService(db *sql.DB, jwtSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{db: db, jwtSecret: []byte(jwtSecret), sessionTTL: sessionTTL}
}

// CreateTables creates the users table if it doesn't exist.
func (s *AuthService) CreateTables() error {
	users := `
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(320) NOT NULL UNIQUE,
		password_hash VARCHAR(60) NOT NULL,
		name VARCHAR(256),
		promotional_consent BOOLEAN DEFAULT FALSE,
		email_verified BOOLEAN DEFAULT FALSE,
		disabled BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_login TIMESTAMP NULL
	)`
	if _, err := s.db.Exec(users); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

// CreateUser registers a new account. The password is stored as a
// bcrypt hash only.
func (s *AuthService) CreateUser(ctx context.Context, email, password, name string, promotionalConsent bool) (*models.User, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, promotional_consent) VALUES (?, ?, ?, ?, ?)",
		user.ID, email, string(hash), name, promotionalConsent)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

// Authenticate checks credentials and returns the user. The error is
// ErrInvalidLogin for both unknown e-mail and wrong password so the
// response never reveals which one failed.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	var hash string
	var name sql.NullString
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, name, email_verified, disabled, created_at, last_login FROM users WHERE email = ?",
		email).Scan(&user.ID, &user.Email, &hash, &name, &user.EmailVerified, &user.Disabled, &user.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidLogin
	}
	if user.Disabled {
		return nil, ErrInvalidLogin
	}

	user.Name = name.String
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	var name sql.NullString
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, email_verified, disabled, created_at, last_login FROM users WHERE id = ?",
		userID).Scan(&user.ID, &user.Email, &name, &user.EmailVerified, &user.Disabled, &user.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.Name = name.String
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	return &user, nil
}

// TouchLastLogin records a successful login time.
func (s *AuthService) TouchLastLogin(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?", userID); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// IssueSession signs a session token for the user.
func (s *AuthService) IssueSession(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateSession parses a session token and returns the user ID it
// was issued for.
func (s *AuthService) ValidateSession(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
