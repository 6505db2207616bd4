package identity

import (
	"context"
	"errors"

	"github.com/codeforge/backend/internal/domain/identity"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/infrastructure/auth"
	"github.com/codeforge/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo  identity.UserRepository
	jwtSvc    *auth.JWTService
	verifier  auth.GoogleVerifier
	blacklist auth.TokenBlacklist
	googleCfg config.GoogleConfig
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtSvc *auth.JWTService,
	verifier auth.GoogleVerifier,
	blacklist auth.TokenBlacklist,
	googleCfg config.GoogleConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSvc:    jwtSvc,
		verifier:  verifier,
		blacklist: blacklist,
		googleCfg: googleCfg,
		logger:    logger,
	}
}

// GoogleLogin verifies a Google ID token and signs the user in, creating
// the account on first sight of the Google subject.
func (s *AuthService) GoogleLogin(ctx context.Context, input GoogleLoginInput) (*LoginResult, error) {
	googleID, err := s.verifyIDToken(ctx, input.IDToken)
	if err != nil {
		s.logger.Warn("Google token verification failed", zap.Error(err))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Google ID token could not be verified")
	}

	isNew := false
	user, err := s.userRepo.FindByGoogleSub(ctx, googleID.Subject)
	switch {
	case err == nil:
		// returning user
	case errors.Is(err, shared.ErrNotFound):
		user, err = identity.NewUser(googleID.Subject, googleID.Email, googleID.Name, googleID.Picture)
		if err != nil {
			s.logger.Warn("Rejected Google identity", zap.Error(err))
			return nil, err
		}
		isNew = true
	default:
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to look up user")
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for suspended account",
			zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account has been suspended")
	}

	user.RecordLogin(googleID.Name, googleID.Picture)

	if isNew {
		err = s.userRepo.Create(ctx, user)
	} else {
		err = s.userRepo.Update(ctx, user)
	}
	if err != nil {
		s.logger.Error("Failed to persist user at login", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to persist user")
	}

	tokenPair, err := s.jwtSvc.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.Bool("new_user", isNew),
		zap.Int("visits", user.Visits),
		zap.String("ip", input.IP))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		IsNewUser:             isNew,
		User:                  userInfo(user),
	}, nil
}

// verifyIDToken verifies the Google ID token, short-circuiting to a static
// identity when the development test credential is enabled and presented.
func (s *AuthService) verifyIDToken(ctx context.Context, idToken string) (*auth.GoogleIdentity, error) {
	if s.googleCfg.AllowTestToken && idToken == auth.TestToken {
		email := s.googleCfg.TestUserEmail
		if email == "" {
			email = "test@example.com"
		}
		return &auth.GoogleIdentity{
			Subject: "test-user",
			Email:   email,
			Name:    "Test User",
		}, nil
	}
	return s.verifier.Verify(ctx, idToken)
}

// RefreshToken refreshes the access token using a valid refresh token
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType):
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		default:
			return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	// A user-wide invalidation (logout everywhere) revokes refresh tokens too
	if s.blacklist != nil {
		invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, userID.String(), claims.GetIssuedAtTime())
		if err != nil {
			s.logger.Error("Blacklist lookup failed during refresh", zap.Error(err))
		} else if invalidated {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("User not found during token refresh", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_SUSPENDED", "Account is no longer active")
	}

	tokenPair, err := s.jwtSvc.RefreshTokenPair(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to refresh token")
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.TokenJTI == "" || input.TokenTTL <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		s.logger.Error("Failed to blacklist token at logout",
			zap.String("user_id", input.UserID.String()),
			zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
	}

	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser retrieves the current user's information
func (s *AuthService) GetCurrentUser(ctx context.Context, input GetCurrentUserInput) (*CurrentUserResult, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	return &CurrentUserResult{User: userInfo(user)}, nil
}

func userInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Picture:     user.Picture,
		Visits:      user.Visits,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
