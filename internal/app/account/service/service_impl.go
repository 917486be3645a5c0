package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmorelos/accounts-backend/internal/adapters/notify"
	"github.com/jmorelos/accounts-backend/internal/adapters/transport/http/dto"
	"github.com/jmorelos/accounts-backend/internal/app/account/hash"
	"github.com/jmorelos/accounts-backend/internal/app/account/reset"
	customErrors "github.com/jmorelos/accounts-backend/internal/domain/account/errors"
	jwt2 "github.com/jmorelos/accounts-backend/internal/domain/account/jwt"
	"github.com/jmorelos/accounts-backend/internal/domain/account/model"
	"github.com/jmorelos/accounts-backend/internal/domain/account/repo"
	"github.com/jmorelos/accounts-backend/internal/infra/config"
)

type accountService struct {
	userRepo  repo.UserRepo
	tokenRepo repo.TokenRepo
	jwtUtil   jwt2.JWTUtil
	hasher    hash.Hasher
	resets    *reset.Manager
	notifier  notify.Notifier
	cfg       *config.Config
	v         *validator.Validate
	log       *zap.Logger
}

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.User, error)
	Login(context.Context, dto.LoginDTO) (model.TokenPair, error)
	Validate(context.Context, dto.ValidateDTO) (model.User, error)
	Refresh(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	Logout(context.Context, dto.LogoutDTO) error
	ChangePassword(context.Context, dto.ChangePasswordDTO) (model.User, error)

	// RequestPasswordReset reports delivery through the returned flag, never
	// through the error: a missing account and a failed notification both
	// come back as (false, nil) so the caller cannot tell them apart.
	RequestPasswordReset(context.Context, dto.RequestResetDTO) (delivered bool, err error)

	ResetPassword(context.Context, dto.ResetPasswordDTO) error
}

func New(
	ur repo.UserRepo,
	tr repo.TokenRepo,
	jm jwt2.JWTUtil,
	h hash.Hasher,
	rm *reset.Manager,
	n notify.Notifier,
	cfg *config.Config,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	return &accountService{
		userRepo: ur, tokenRepo: tr, jwtUtil: jm,
		hasher: h, resets: rm, notifier: n,
		cfg: cfg, v: v, log: log,
	}
}

func (a *accountService) Register(ctx context.Context, dto dto.RegisterDTO) (model.User, error) {

	if err := a.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := a.hasher.Hash(dto.Password + a.cfg.PasswordPepper)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		ID:           uuid.New(),
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: passwordHash,
	}
	if _, err = a.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "Register")
	}

	return user, nil
}

func (a *accountService) Login(ctx context.Context, dto dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, dto.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := a.hasher.Verify(dto.Password+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return a.issuePair(ctx, user.ID)
}

func (a *accountService) Validate(ctx context.Context, dto dto.ValidateDTO) (model.User, error) {

	if err := a.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateAccessToken(dto.AccessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsAccessRevoked(ctx, claims.ID)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "Validate")
	}
	if revoked {
		return model.User{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	return user, nil
}

func (a *accountService) Refresh(ctx context.Context, dto dto.RefreshDTO) (model.TokenPair, error) {

	if err := a.v.Struct(dto); err != nil {
		return model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	revoked, err := a.tokenRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if revoked {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	if err = a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	return a.issuePair(ctx, uid)
}

func (a *accountService) Logout(ctx context.Context, dto dto.LogoutDTO) error {

	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	claims, err := a.jwtUtil.ValidateRefreshToken(dto.RefreshToken)
	if err != nil {
		return customErrors.ErrInvalidToken
	}

	if err = a.tokenRepo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}

	if dto.AccessToken != "" {
		if ac, err := a.jwtUtil.ValidateAccessToken(dto.AccessToken); err == nil {
			if err = a.tokenRepo.RevokeAccess(ctx, ac.ID, ac.ExpiresAt.Time); err != nil {
				return customErrors.WrapInternal(err, "Logout")
			}
		}
	}

	return nil
}

func (a *accountService) ChangePassword(ctx context.Context, dto dto.ChangePasswordDTO) (model.User, error) {

	if err := a.v.Struct(dto); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, dto.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.ErrNotFound
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "ChangePassword")
	}

	ok, err := a.hasher.Verify(dto.CurrentPassword+a.cfg.PasswordPepper, user.PasswordHash)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "ChangePassword")
	}
	if !ok {
		return model.User{}, customErrors.ErrInvalidCredentials
	}

	newHash, err := a.hasher.Hash(dto.NewPassword + a.cfg.PasswordPepper)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "ChangePassword")
	}
	user.PasswordHash = newHash

	if err = a.userRepo.UpdateUser(ctx, user); err != nil {
		return model.User{}, customErrors.WrapInternal(err, "ChangePassword")
	}

	return user, nil
}

func (a *accountService) RequestPasswordReset(ctx context.Context, dto dto.RequestResetDTO) (bool, error) {

	if err := a.v.Struct(dto); err != nil {
		return false, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, dto.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// Same outward result as the success path: account existence must
		// not be observable through this operation.
		a.log.Debug("reset requested for unknown email")
		return false, nil
	case err != nil:
		return false, customErrors.WrapInternal(err, "RequestPasswordReset")
	}

	token, err := a.resets.Issue(&user)
	if err != nil {
		return false, customErrors.WrapInternal(err, "RequestPasswordReset")
	}

	if err = a.userRepo.UpdateUser(ctx, user); err != nil {
		return false, customErrors.WrapInternal(err, "RequestPasswordReset")
	}

	// The token is durably stored at this point. Delivery is best-effort
	// under a bounded timeout; a failure is logged and reported only via
	// the flag.
	notifyCtx, cancel := context.WithTimeout(ctx, a.notifyTimeout())
	defer cancel()

	if err = a.notifier.Send(notifyCtx, user.Email, token); err != nil {
		a.log.Warn("reset token delivery failed",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return false, nil
	}

	return true, nil
}

func (a *accountService) ResetPassword(ctx context.Context, dto dto.ResetPasswordDTO) error {

	if err := a.v.Struct(dto); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, dto.Email)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		// Collapsed with token failures to avoid an account oracle.
		return customErrors.ErrInvalidToken
	case err != nil:
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	newHash, err := a.hasher.Hash(dto.NewPassword + a.cfg.PasswordPepper)
	if err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	if err = a.resets.Consume(&user, dto.Token); err != nil {
		return err
	}

	// Consume cleared the token fields; the new hash and the cleared token
	// reach the store in one save.
	user.PasswordHash = newHash

	if err = a.userRepo.UpdateUser(ctx, user); err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	return nil
}

func (a *accountService) issuePair(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	at, atExp, _, err := a.jwtUtil.GenerateAccessToken(userID, []string{"user"})
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, jti, err := a.jwtUtil.GenerateRefreshToken(userID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	if err = a.tokenRepo.Store(ctx, jti, rtExp); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "StoreRefresh")
	}

	now := time.Now()

	return model.TokenPair{
		AccessToken:     at,
		RefreshToken:    rt,
		AccessTTL:       atExp.Sub(now),
		RefreshTTL:      rtExp.Sub(now),
		UserID:          userID,
		RefreshTokenJTI: jti,
	}, nil
}

func (a *accountService) notifyTimeout() time.Duration {
	if a.cfg.NotifyTimeout > 0 {
		return a.cfg.NotifyTimeout
	}
	return 5 * time.Second
}
