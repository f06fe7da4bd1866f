package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"waypost/internal/config"
	"waypost/internal/mail"
	"waypost/internal/model"
	"waypost/internal/repository"
)

const resetTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const resetTokenLength = 10

// AccountService handles registration, email verification, login and
// password reset.
type AccountService struct {
	db          *sqlx.DB
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	resetRepo   repository.ResetRepository
	auth        *AuthService
	mailer      mail.Dispatcher
	config      *config.Config
}

func NewAccountService(
	db *sqlx.DB,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	resetRepo repository.ResetRepository,
	auth *AuthService,
	mailer mail.Dispatcher,
	cfg *config.Config,
) *AccountService {
	return &AccountService{
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		resetRepo:   resetRepo,
		auth:        auth,
		mailer:      mailer,
		config:      cfg,
	}
}

// Register creates a new unverified account and dispatches the
// confirmation mail. The account cannot log in until the mailed link
// is followed.
func (s *AccountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrValidation)
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", model.ErrValidation)
	}
	if req.Password == "" {
		return nil, fmt.Errorf("%w: password is required", model.ErrValidation)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	exists, err = s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerificationMail(ctx, user)
	return user, nil
}

// ResendVerification dispatches a fresh confirmation mail for an
// account that has not yet verified.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return fmt.Errorf("%w: account already verified", model.ErrValidation)
	}

	s.sendVerificationMail(ctx, user)
	return nil
}

// ConfirmVerification redeems an emailed verification token. The first
// successful call flips the account to verified and creates its default
// profile; repeat calls with the same valid token succeed without side
// effects.
func (s *AccountService) ConfirmVerification(ctx context.Context, tokenRaw string) error {
	userID, err := s.auth.DecodeVerificationToken(tokenRaw)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	transitioned, err := s.userRepo.MarkVerified(ctx, tx, userID)
	if err != nil {
		return err
	}

	if transitioned {
		profile := &model.Profile{
			UserID:   userID,
			NickName: model.DefaultNickName,
		}
		if err := s.profileRepo.Create(ctx, tx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
	}

	return tx.Commit()
}

// Login authenticates by email and password and issues a token pair.
// Wrong email and wrong password are indistinguishable; the verified
// and active gates are only reported once the credentials are correct.
func (s *AccountService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, model.ErrEmailNotVerified
	}
	if !user.IsActive {
		return nil, model.ErrAccountDisabled
	}

	pair, err := s.auth.GenerateTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.LoginResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// RequestReset records a password reset request and mails its token.
// An unknown email gets the same nil response as a known one, so the
// endpoint cannot be used to discover which addresses are registered.
func (s *AccountService) RequestReset(ctx context.Context, email string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		if err == model.ErrUserNotFound {
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	reset := &model.PasswordReset{Email: email, Token: token}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return fmt.Errorf("store reset request: %w", err)
	}

	resetURL := fmt.Sprintf("%s/auth/reset-password/%s", s.config.FrontendURL, token)
	s.mailer.Dispatch(ctx, mail.ResetMessage(email, resetURL))
	return nil
}

// ConfirmReset redeems a reset token and sets the new password. The
// token row is consumed atomically, so of any number of concurrent
// attempts with the same token exactly one can succeed. A successful
// reset also revokes every open session for the account.
func (s *AccountService) ConfirmReset(ctx context.Context, req *model.ResetRequest) error {
	if req.Password == "" {
		return fmt.Errorf("%w: password is required", model.ErrValidation)
	}
	if req.Password != req.PasswordConfirm {
		return fmt.Errorf("%w: passwords do not match", model.ErrValidation)
	}

	email, err := s.resetRepo.Consume(ctx, req.Token)
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordByEmail(ctx, email, string(hashedPassword)); err != nil {
		return err
	}

	if user, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		_ = s.auth.RevokeAllUserTokens(ctx, user.ID)
	}
	return nil
}

// GetUser returns the account record for userID.
func (s *AccountService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// DeleteAccount removes the account and everything hanging off it via
// FK cascades, then revokes its sessions.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.auth.RevokeAllUserTokens(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *AccountService) sendVerificationMail(ctx context.Context, user *model.User) {
	token, err := s.auth.IssueVerificationToken(user.ID)
	if err != nil {
		// Registration already succeeded; the user can request a re-send.
		return
	}
	verifyURL := fmt.Sprintf("%s/auth/email-verify?token=%s", s.config.FrontendURL, token)
	s.mailer.Dispatch(ctx, mail.VerificationMessage(user.Username, user.Email, verifyURL))
}

// newResetToken draws a short lowercase alphanumeric token. Short-lived
// single-use codes keep the reset mail readable.
func newResetToken() (string, error) {
	out := make([]byte, resetTokenLength)
	max := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(out), nil
}
