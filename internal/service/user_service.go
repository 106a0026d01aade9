package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"cookbook/internal/models"
	"cookbook/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer    = "cookbook-api"
	tokenTTL       = 7 * 24 * time.Hour
	minPasswordLen = 6
)

// Claims is what the server trusts about a caller after verifying a token.
type Claims struct {
	UserID string
	Role   string
}

// UserService signs users up and in and issues their tokens.
type UserService struct {
	userRepo repository.UserRepository
	secret   []byte
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, jwtSecret string) *UserService {
	return &UserService{userRepo: userRepo, secret: []byte(jwtSecret), now: time.Now}
}

func (s *UserService) Signup(ctx context.Context, in models.Registration) (*models.AuthResponse, error) {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		problems = append(problems, "a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(problems) > 0 {
		return nil, models.NewValidationError("Please fill out all required fields", problems...)
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("User already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *UserService) Login(ctx context.Context, in models.Credentials) (*models.AuthResponse, error) {
	if in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.respond(user)
}

func (s *UserService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.AuthResponse{
		Token: token,
		ID:    user.ID,
		Role:  user.Role,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

// IssueToken signs an HS256 token carrying the user's id and role.
func (s *UserService) IssueToken(user *models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"iss":  tokenIssuer,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
		"jti":  uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken verifies a token issued by IssueToken.
func (s *UserService) ParseToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Claims{}, models.NewUnauthorizedError("Invalid subject claim")
	}
	role, _ := claims["role"].(string)
	return Claims{UserID: sub, Role: role}, nil
}
