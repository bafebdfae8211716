// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/apperr"
	"github.com/taibuivan/yamdb/internal/platform/constants"
	"github.com/taibuivan/yamdb/internal/platform/mailer"
	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer mints bearer tokens bound to an identity.
type TokenIssuer interface {
	Issue(identity sec.Identity, timeToLive time.Duration) (string, error)
}

// Options tunes the confirmation flow.
type Options struct {
	// CodeSecret keys the confirmation-code digests.
	CodeSecret string
	// MailFrom is the sender address of confirmation emails.
	MailFrom string
	// TokenTTL is the lifetime of issued bearer tokens.
	TokenTTL time.Duration
	// MaxAttempts is the number of failed exchanges allowed per window.
	MaxAttempts int
	// AttemptWindow is how long failures are remembered.
	AttemptWindow time.Duration
}

// Service implements the signup and token exchange use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to code generation,
// digest storage or the exchange checks must be reviewed by the security team.
type Service struct {
	userRepository         UserRepository
	confirmationRepository ConfirmationRepository
	attemptLimiter         AttemptLimiter
	tokenIssuer            TokenIssuer
	mailer                 mailer.Mailer
	options                Options
	logger                 *slog.Logger

	generateCode CodeGenerator
	now          func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	confirmationRepo ConfirmationRepository,
	limiter AttemptLimiter,
	issuer TokenIssuer,
	mail mailer.Mailer,
	options Options,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:         userRepo,
		confirmationRepository: confirmationRepo,
		attemptLimiter:         limiter,
		tokenIssuer:            issuer,
		mailer:                 mail,
		options:                options,
		logger:                 logger,
		generateCode:           NumericCode,
		now:                    time.Now,
	}
}

// # Availability

/*
CheckAvailable enforces the account naming rules shared by signup and user
management.

Description: The checks run in a fixed order (username taken, reserved
name, email taken) so the reported field is stable. excludeID skips the
account being edited.

Parameters:
  - context: context.Context
  - users: UserRepository
  - username: string
  - email: string
  - excludeID: string (empty when creating)

Returns:
  - error: ValidationError naming the offending field, or storage errors
*/
func CheckAvailable(context context.Context, users UserRepository, username, email, excludeID string) error {
	if username != "" {
		existing, err := users.FindByUsername(context, username)
		switch {
		case err == nil && existing.ID != excludeID:
			return validate.RequiredError(FieldUsername, "A user with that username already exists")
		case err != nil && !apperr.IsNotFound(err):
			return fmt.Errorf("auth_check_username_failed: %w", err)
		}

		if username == constants.ReservedUsername {
			return validate.RequiredError(FieldUsername, fmt.Sprintf("Username %q is reserved", constants.ReservedUsername))
		}
	}

	if email != "" {
		taken, err := users.ExistsByEmail(context, email)
		if err != nil {
			return fmt.Errorf("auth_check_email_failed: %w", err)
		}

		if taken && !sameEmail(context, users, excludeID, email) {
			return validate.RequiredError(FieldEmail, "A user with that email is already registered")
		}
	}

	return nil
}

// sameEmail reports whether the email already belongs to the excluded account.
func sameEmail(context context.Context, users UserRepository, excludeID, email string) bool {
	if excludeID == "" {
		return false
	}
	current, err := users.FindByID(context, excludeID)
	return err == nil && current.Email == email
}

// # Signup Flow

// SignupInput holds the data required to request a confirmation code.
type SignupInput struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

/*
RequestSignup registers an account and emails it a confirmation code.

Description: Validates the payload, enforces the naming rules, persists the
account with the plain user role, stores the code digest and hands the code
to the mailer.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *User: Created entity
  - error: ValidationError, or Internal when code generation or mail fails
*/
func (service *Service) RequestSignup(context context.Context, input SignupInput) (*User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	if err := CheckAvailable(context, service.userRepository, input.Username, input.Email, ""); err != nil {
		return nil, err
	}

	user := &User{
		ID:       uuid.New(),
		Username: input.Username,
		Email:    input.Email,
		Role:     sec.RoleUser,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	code, err := service.issueCode(context, user)
	if err != nil {
		service.discardSignup(context, user)
		return nil, err
	}

	email := mailer.NewConfirmation(service.options.MailFrom, user.Email, user.Username, code)
	if err := service.mailer.SendConfirmation(context, email); err != nil {
		service.discardSignup(context, user)
		return nil, apperr.Internal(fmt.Errorf("auth_service_mail_failed: %w", err))
	}

	service.logger.InfoContext(context, "signup_confirmation_sent",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// discardSignup removes an account whose code never reached the user.
// Its confirmations cascade.
func (service *Service) discardSignup(context context.Context, user *User) {
	if err := service.userRepository.Delete(context, user.ID); err != nil {
		service.logger.ErrorContext(context, "signup_rollback_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

// issueCode generates a code whose digest is not yet stored and persists it.
func (service *Service) issueCode(context context.Context, user *User) (string, error) {
	for attempt := 0; attempt < constants.ConfirmationCodeRetries; attempt++ {
		code, err := service.generateCode()
		if err != nil {
			return "", apperr.Internal(fmt.Errorf("auth_service_code_generation_failed: %w", err))
		}

		digest := sec.CodeDigest(service.options.CodeSecret, code)

		taken, err := service.confirmationRepository.DigestExists(context, digest)
		if err != nil {
			return "", fmt.Errorf("auth_service_code_lookup_failed: %w", err)
		}
		if taken {
			continue
		}

		confirmation := &Confirmation{
			ID:         uuid.New(),
			UserID:     user.ID,
			CodeDigest: digest,
			CreatedAt:  service.now().UTC(),
		}
		if err := service.confirmationRepository.Create(context, confirmation); err != nil {
			return "", fmt.Errorf("auth_service_code_store_failed: %w", err)
		}

		return code, nil
	}

	return "", apperr.Internal(errors.New("auth_service_code_space_exhausted"))
}

// # Token Exchange

// ExchangeInput carries a confirmation-code exchange attempt.
type ExchangeInput struct {
	Username string
	Code     string
}

/*
ExchangeCode trades a username and confirmation code for a bearer token.

Description: Failed attempts are counted per username; once the limit is
reached further attempts are rejected until the window closes. A matched
code is marked used but stays valid.

Parameters:
  - context: context.Context
  - input: ExchangeInput

Returns:
  - string: Signed bearer token
  - error: ValidationError, NotFound, RateLimited or internal failures
*/
func (service *Service) ExchangeCode(context context.Context, input ExchangeInput) (string, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MaxLen(FieldUsername, input.Username, validate.MaxUsernameLen).
		Required(FieldConfirmationCode, input.Code).
		MaxLen(FieldConfirmationCode, input.Code, constants.ConfirmationCodeMaxLen)

	if err := validator.Err(); err != nil {
		return "", err
	}

	failures, retryAfter, err := service.attemptLimiter.Failures(context, input.Username)
	if err != nil {
		return "", fmt.Errorf("auth_service_attempts_failed: %w", err)
	}
	if failures >= service.options.MaxAttempts {
		return "", apperr.RateLimited(max(int(retryAfter/time.Second), 1))
	}

	user, err := service.userRepository.FindByUsername(context, input.Username)
	if err != nil {
		return "", err
	}

	confirmation, err := service.confirmationRepository.Latest(context, user.ID)
	if err != nil && !apperr.IsNotFound(err) {
		return "", fmt.Errorf("auth_service_confirmation_failed: %w", err)
	}

	digest := sec.CodeDigest(service.options.CodeSecret, input.Code)
	if confirmation == nil || !sec.DigestEqual(confirmation.CodeDigest, digest) {
		count, recordErr := service.attemptLimiter.RecordFailure(context, input.Username, service.options.AttemptWindow)
		if recordErr != nil {
			return "", fmt.Errorf("auth_service_attempts_record_failed: %w", recordErr)
		}

		service.logger.WarnContext(context, "confirmation_code_mismatch",
			slog.String("username", input.Username),
			slog.Int("failures", count),
		)

		return "", validate.RequiredError(FieldConfirmationCode, "Username and confirmation code do not match")
	}

	if err := service.attemptLimiter.Reset(context, input.Username); err != nil {
		return "", fmt.Errorf("auth_service_attempts_reset_failed: %w", err)
	}

	if err := service.confirmationRepository.MarkUsed(context, confirmation.ID, service.now().UTC()); err != nil {
		return "", fmt.Errorf("auth_service_mark_used_failed: %w", err)
	}

	token, err := service.tokenIssuer.Issue(*user.Identity(), service.options.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return token, nil
}

// # Bootstrap & Identity

/*
EnsureSuperuser makes sure an admin staff account exists at startup.

Description: Creates the account when absent; an existing account with the
username is promoted in place. Running it again is a no-op.

Parameters:
  - context: context.Context
  - username: string
  - email: string

Returns:
  - *User: The superuser account
  - error: ValidationError or storage errors
*/
func (service *Service) EnsureSuperuser(context context.Context, username, email string) (*User, error) {
	existing, err := service.userRepository.FindByUsername(context, username)
	switch {
	case err == nil:
		if existing.Role == sec.RoleAdmin && existing.IsStaff {
			return existing, nil
		}

		existing.Role = sec.RoleAdmin
		existing.IsStaff = true
		if err := service.userRepository.Update(context, existing); err != nil {
			return nil, fmt.Errorf("auth_service_promote_failed: %w", err)
		}

		service.logger.InfoContext(context, "superuser_promoted", slog.String("username", username))
		return existing, nil

	case !apperr.IsNotFound(err):
		return nil, fmt.Errorf("auth_service_superuser_lookup_failed: %w", err)
	}

	if err := validate.Struct(SignupInput{Username: username, Email: email}); err != nil {
		return nil, err
	}

	if err := CheckAvailable(context, service.userRepository, username, email, ""); err != nil {
		return nil, err
	}

	user := &User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Role:     sec.RoleAdmin,
		IsStaff:  true,
	}
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_superuser_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "superuser_created", slog.String("username", username))
	return user, nil
}

/*
LoadIdentity resolves the current actor for an authenticated request.

Description: The account is read on every request so role and staff
changes take effect without reissuing tokens.

Returns:
  - *sec.Identity: Actor view of the account
  - error: apperr.NotFound when the account was deleted
*/
func (service *Service) LoadIdentity(context context.Context, userID string) (*sec.Identity, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}
