// Package services contains server-side business logic. This file implements
// UserService, which handles sign up, sign in, and issuing/refreshing JWTs
// plus server-stored refresh tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/labscribe/internal/common"
	"github.com/dmitrijs2005/labscribe/internal/server/auth"
	"github.com/dmitrijs2005/labscribe/internal/server/config"
	"github.com/dmitrijs2005/labscribe/internal/server/models"
	"github.com/dmitrijs2005/labscribe/internal/server/repositories/repomanager"
)

// Session is what a successful sign up, sign in, or refresh hands back.
type Session struct {
	UserID          string
	Email           string
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// UserService provides authentication-related operations:
// - SignUp: create users together with their profile
// - SignIn: verify credentials and mint tokens
// - Refresh: rotate refresh tokens and mint new access tokens
// - SignOut: revoke a refresh token
type UserService struct {
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	now                          func() time.Time
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   cost,
		now:                          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers email with password and stores fullName as the start of
// the user's profile. A taken email yields common.ErrAlreadyExists and a
// short password common.ErrWeakPassword.
func (s *UserService) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	email = normalizeEmail(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return nil, fmt.Errorf("%w: email %v", common.ErrValidation, err)
	}
	if len(password) < common.MinPasswordLength {
		return nil, common.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password too long", common.ErrValidation)
		}
		return nil, common.ErrInternal
	}

	var session *Session
	err = s.repomanager.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		user, err := r.Users().Create(ctx, &models.User{Email: email, PasswordHash: hash})
		if err != nil {
			return err
		}
		if err := r.Profiles().Upsert(ctx, &models.Profile{UserID: user.ID, FullName: strings.TrimSpace(fullName)}); err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}
		session, err = s.generateSession(ctx, r, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// SignIn verifies the password. An unknown email and a wrong password are
// indistinguishable to the caller: both yield common.ErrUnauthorized.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrUnauthorized
	}
	return s.generateSession(ctx, s.repomanager, user)
}

// Refresh validates a refresh token, rotates it transactionally, and
// returns a fresh Session. Expired tokens yield ErrRefreshTokenExpired and
// unknown ones ErrUnauthorized.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	hash := common.HashToken(refreshToken)

	var (
		session *Session
		expired bool
	)
	err := s.repomanager.InTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		token, err := r.RefreshTokens().Consume(ctx, hash)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrUnauthorized
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expires.Before(s.now()) {
			// commit the delete, report after
			expired = true
			return nil
		}
		user, err := r.Users().GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		session, err = s.generateSession(ctx, r, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, common.ErrRefreshTokenExpired
	}
	return session, nil
}

// SignOut revokes refreshToken. Unknown tokens are ignored.
func (s *UserService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens().Delete(ctx, common.HashToken(refreshToken)); err != nil {
		return common.ErrInternal
	}
	return nil
}

// --- helpers below ---

func (s *UserService) generateSession(ctx context.Context, r repomanager.Repositories, user *models.User) (*Session, error) {
	access, expires, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}
	if err := r.RefreshTokens().Create(ctx, user.ID, common.HashToken(refresh), s.now().Add(s.refreshTokenValidityDuration)); err != nil {
		return nil, common.ErrInternal
	}
	return &Session{
		UserID:          user.ID,
		Email:           user.Email,
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: expires,
	}, nil
}
