// Package auth is the access boundary: credential checks, token issuance
// and verification. Everything past the middleware trusts the Identity this
// package produces.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dorhakim100/Sell-It-Backend/internal/apperr"
	"github.com/dorhakim100/Sell-It-Backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// UserSource is the slice of the user repository auth needs.
type UserSource interface {
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByAny(ctx context.Context, username, email, phone string) (*models.User, error)
	Add(ctx context.Context, u models.User) (*models.User, error)
}

type Service struct {
	users  UserSource
	secret []byte
	expiry time.Duration
	log    *zap.SugaredLogger
}

func NewService(users UserSource, secret string, expiry time.Duration, log *zap.SugaredLogger) *Service {
	return &Service{users: users, secret: []byte(secret), expiry: expiry, log: log}
}

type LoginResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Service) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid username or password", apperr.ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", apperr.ErrUnauthorized)
	}
	u.Password = ""
	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: token}, nil
}

type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*LoginResult, error) {
	if in.Username == "" || in.Password == "" || in.Fullname == "" {
		return nil, fmt.Errorf("%w: missing required signup information", apperr.ErrBadRequest)
	}

	// each value checks its own field: a new username with a registered
	// email or phone is still a duplicate
	existing, err := s.users.GetByAny(ctx, in.Username, in.Email, in.Phone)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username, email or phone already registered", apperr.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Add(ctx, models.User{
		Username: in.Username,
		Password: string(hash),
		Fullname: in.Fullname,
		Email:    in.Email,
		Phone:    in.Phone,
		IsAdmin:  in.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	u.Password = ""
	token, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: token}, nil
}

// IssueToken signs the identity claims the frontend has always relied on.
func (s *Service) IssueToken(u *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"_id":      u.ID.Hex(),
		"fullname": u.Fullname,
		"isAdmin":  u.IsAdmin,
		"email":    u.Email,
		"phone":    u.Phone,
		"iat":      now.Unix(),
		"exp":      now.Add(s.expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Validate verifies the bearer token and extracts the caller identity.
func (s *Service) Validate(tokenStr string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims", apperr.ErrUnauthorized)
	}
	id := &models.Identity{}
	if v, ok := claims["_id"].(string); ok {
		id.ID = v
	}
	if v, ok := claims["fullname"].(string); ok {
		id.Fullname = v
	}
	if v, ok := claims["isAdmin"].(bool); ok {
		id.IsAdmin = v
	}
	if v, ok := claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := claims["phone"].(string); ok {
		id.Phone = v
	}
	if id.ID == "" {
		return nil, fmt.Errorf("%w: token missing subject", apperr.ErrUnauthorized)
	}
	return id, nil
}
