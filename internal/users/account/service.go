// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/yamdb/internal/platform/sec"
	"github.com/taibuivan/yamdb/internal/platform/validate"
	"github.com/taibuivan/yamdb/internal/users/auth"
	"github.com/taibuivan/yamdb/pkg/pagination"
	"github.com/taibuivan/yamdb/pkg/pointer"
	"github.com/taibuivan/yamdb/pkg/uuid"
)

// # Service Layer

// Service orchestrates the profile and user-management use cases.
type Service struct {
	userRepository auth.UserRepository
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(userRepo auth.UserRepository, logger *slog.Logger) *Service {
	return &Service{userRepository: userRepo, logger: logger}
}

// # Profile Management

/*
GetOwnProfile retrieves the account of the authenticated actor.

Parameters:
  - context: context.Context
  - identity: *sec.Identity

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetOwnProfile(context context.Context, identity *sec.Identity) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

/*
UpdateOwnProfile applies a partial set of changes to the actor's own account.

Description: Only names and bio are writable. Username, email and role are
written back from the stored record, whatever the request carried.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - input: ProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Validation or storage failures
*/
func (service *Service) UpdateOwnProfile(context context.Context, identity *sec.Identity, input ProfileInput) (*auth.User, error) {
	if err := validateProfile(input.FirstName, input.LastName); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(context, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	user.FirstName = pointer.Fallback(input.FirstName, user.FirstName)
	user.LastName = pointer.Fallback(input.LastName, user.LastName)
	user.Bio = pointer.Fallback(input.Bio, user.Bio)

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_profile_updated", slog.String("user_id", user.ID))

	return user, nil
}

// # User Management

/*
List returns one page of accounts, optionally filtered by username.

Parameters:
  - context: context.Context
  - search: string (case-insensitive substring of the username)
  - params: pagination.Params

Returns:
  - []*auth.User: Page items
  - int: Total matching accounts
  - error: Storage failures
*/
func (service *Service) List(context context.Context, search string, params pagination.Params) ([]*auth.User, int, error) {
	users, total, err := service.userRepository.List(context, auth.UserFilter{
		Search: strings.TrimSpace(search),
		Limit:  params.Limit,
		Offset: params.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

// Get returns the account with the given username.
func (service *Service) Get(context context.Context, username string) (*auth.User, error) {
	return service.userRepository.FindByUsername(context, username)
}

/*
Create registers an account on behalf of an administrator.

Description: The naming rules of signup apply. No confirmation code is
issued here.

Parameters:
  - context: context.Context
  - input: UserInput

Returns:
  - *auth.User: Created entity
  - error: ValidationError or storage failures
*/
func (service *Service) Create(context context.Context, input UserInput) (*auth.User, error) {
	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, pointer.Val(input.Username)).
		Required(auth.FieldEmail, pointer.Val(input.Email))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	role, err := validateUser(input)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(*input.Username),
		Email:     strings.TrimSpace(*input.Email),
		FirstName: pointer.Val(input.FirstName),
		LastName:  pointer.Val(input.LastName),
		Bio:       pointer.Val(input.Bio),
		Role:      pointer.Fallback(role, sec.RoleUser),
	}

	if err := auth.CheckAvailable(context, service.userRepository, user.Username, user.Email, ""); err != nil {
		return nil, err
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_created",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)

	return user, nil
}

/*
Update applies an administrative partial update to an account.

Parameters:
  - context: context.Context
  - username: string (current username)
  - input: UserInput

Returns:
  - *auth.User: The updated entity
  - error: NotFound, ValidationError or storage failures
*/
func (service *Service) Update(context context.Context, username string, input UserInput) (*auth.User, error) {
	role, err := validateUser(input)
	if err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	var newUsername, newEmail string
	if input.Username != nil && strings.TrimSpace(*input.Username) != user.Username {
		newUsername = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil && strings.TrimSpace(*input.Email) != user.Email {
		newEmail = strings.TrimSpace(*input.Email)
	}

	if err := auth.CheckAvailable(context, service.userRepository, newUsername, newEmail, user.ID); err != nil {
		return nil, err
	}

	if newUsername != "" {
		user.Username = newUsername
	}
	if newEmail != "" {
		user.Email = newEmail
	}
	user.FirstName = pointer.Fallback(input.FirstName, user.FirstName)
	user.LastName = pointer.Fallback(input.LastName, user.LastName)
	user.Bio = pointer.Fallback(input.Bio, user.Bio)
	user.Role = pointer.Fallback(role, user.Role)

	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_admin_update_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_updated", slog.String("user_id", user.ID))

	return user, nil
}

// Delete removes the account with the given username.
func (service *Service) Delete(context context.Context, username string) error {
	user, err := service.userRepository.FindByUsername(context, username)
	if err != nil {
		return err
	}

	if err := service.userRepository.Delete(context, user.ID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.WarnContext(context, "user_deleted", slog.String("user_id", user.ID))

	return nil
}

// # Validation

func validateProfile(firstName, lastName *string) error {
	validator := &validate.Validator{}
	if firstName != nil {
		validator.MaxLen(FieldFirstName, *firstName, maxNameLen)
	}
	if lastName != nil {
		validator.MaxLen(FieldLastName, *lastName, maxNameLen)
	}
	return validator.Err()
}

// validateUser checks the present fields and parses the role, if any.
func validateUser(input UserInput) (*sec.Role, error) {
	validator := &validate.Validator{}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		validator.Required(auth.FieldUsername, username).Username(auth.FieldUsername, username)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		validator.Required(auth.FieldEmail, email).
			MaxLen(auth.FieldEmail, email, maxEmailLen).
			Email(auth.FieldEmail, email)
	}
	if input.FirstName != nil {
		validator.MaxLen(FieldFirstName, *input.FirstName, maxNameLen)
	}
	if input.LastName != nil {
		validator.MaxLen(FieldLastName, *input.LastName, maxNameLen)
	}

	var role *sec.Role
	if input.Role != nil {
		parsed, err := sec.ParseRole(*input.Role)
		validator.Custom(FieldRole, err != nil, fmt.Sprintf("%q is not a valid choice", *input.Role))
		role = &parsed
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return role, nil
}
