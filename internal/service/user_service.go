package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go-portal-app/internal/apperror"
	"go-portal-app/internal/auth"
	"go-portal-app/internal/data"
	"go-portal-app/internal/logger"
)

// MaxFullNameLength bounds the optional display name on a profile.
const MaxFullNameLength = 100

// IdentityRepository defines the identity-store operations the user
// workflows consume: account lookup, profile mutation and role membership.
type IdentityRepository interface {
	Upsert(ctx context.Context, user *data.User) error
	FindByID(ctx context.Context, id string) (*data.User, error)
	List(ctx context.Context) ([]*data.User, error)
	UpdateProfile(ctx context.Context, id string, fullName *string) error
	Delete(ctx context.Context, id string) error
	GetRoles(ctx context.Context, userID string) ([]string, error)
	ListRoles(ctx context.Context) ([]*data.Role, error)
	RoleExists(ctx context.Context, name string) (bool, error)
	AddRoles(ctx context.Context, userID string, names []string) error
	RemoveRoles(ctx context.Context, userID string, names []string) error
}

// UserService orchestrates account and role-assignment workflows,
// including the role reconciler used by the admin dashboard.
type UserService struct {
	identity IdentityRepository
	log      logger.Logger
}

// NewUserService creates a new UserService.
func NewUserService(identity IdentityRepository, log logger.Logger) *UserService {
	return &UserService{identity: identity, log: log}
}

// RegisterLogin records a verified login. First-time subjects get a row
// with registered_at stamped once and the default "User" role; returning
// subjects only have email and display name refreshed.
func (s *UserService) RegisterLogin(ctx context.Context, claims *auth.Claims) (*data.User, error) {
	existing, err := s.identity.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	user := &data.User{
		ID:           claims.Subject,
		Email:        claims.Email,
		RegisteredAt: time.Now().UTC(),
	}
	if name := strings.TrimSpace(claims.Name); name != "" {
		user.FullName = &name
	}
	if err := s.identity.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("recording login: %w", err)
	}

	if existing == nil {
		if err := s.identity.AddRoles(ctx, user.ID, []string{auth.RoleUser}); err != nil {
			return nil, fmt.Errorf("granting default role: %w", err)
		}
		s.log.Info(fmt.Sprintf("registered new user %s", user.ID))
	}
	return user, nil
}

// ListUsers returns all accounts, newest registration first, each with its
// current role set. Admin only.
func (s *UserService) ListUsers(ctx context.Context, principal auth.Principal) ([]*data.User, error) {
	if !auth.CanManageUsers(principal) {
		return nil, apperror.Forbidden("user management requires the Admin role")
	}
	users, err := s.identity.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	for _, user := range users {
		roles, err := s.identity.GetRoles(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("loading roles for %s: %w", user.ID, err)
		}
		user.Roles = roles
	}
	return users, nil
}

// GetUser returns a single account with its role set. Admin only.
func (s *UserService) GetUser(ctx context.Context, principal auth.Principal, id string) (*data.User, error) {
	if !auth.CanManageUsers(principal) {
		return nil, apperror.Forbidden("user management requires the Admin role")
	}
	user, err := s.identity.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user", id)
	}
	roles, err := s.identity.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("loading roles for %s: %w", user.ID, err)
	}
	user.Roles = roles
	return user, nil
}

// ListRoles returns every defined role. Admin only.
func (s *UserService) ListRoles(ctx context.Context, principal auth.Principal) ([]*data.Role, error) {
	if !auth.CanManageUsers(principal) {
		return nil, apperror.Forbidden("user management requires the Admin role")
	}
	roles, err := s.identity.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	return roles, nil
}

// EditUser updates a user's profile and reconciles its role set to the
// desired one. The profile update commits before the role steps run and is
// NOT rolled back if reconciliation later fails; that ordering matches the
// established dashboard behavior and callers rely on the partial-failure
// report to see how far the workflow got.
func (s *UserService) EditUser(ctx context.Context, principal auth.Principal, id string, fullName *string, desiredRoles []string) error {
	if !auth.CanManageUsers(principal) {
		return apperror.Forbidden("user management requires the Admin role")
	}
	user, err := s.identity.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return apperror.NotFound("user", id)
	}

	if fullName != nil {
		trimmed := strings.TrimSpace(*fullName)
		if utf8.RuneCountInString(trimmed) > MaxFullNameLength {
			return apperror.ValidationFailed("full_name",
				fmt.Sprintf("full name must be %d characters or less", MaxFullNameLength))
		}
		if trimmed == "" {
			fullName = nil
		} else {
			fullName = &trimmed
		}
	}

	// Step 1: profile fields.
	if err := s.identity.UpdateProfile(ctx, id, fullName); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}

	// Step 2: role reconciliation. Unknown role names stop the workflow
	// here, with the profile change already committed.
	for _, name := range desiredRoles {
		exists, err := s.identity.RoleExists(ctx, name)
		if err != nil {
			return fmt.Errorf("checking role %s: %w", name, err)
		}
		if !exists {
			return apperror.ValidationFailed("roles", fmt.Sprintf("role %q does not exist", name))
		}
	}

	current, err := s.identity.GetRoles(ctx, id)
	if err != nil {
		return fmt.Errorf("loading current roles: %w", err)
	}
	toRemove := difference(current, desiredRoles)
	toAdd := difference(desiredRoles, current)

	// Removal first, then addition, each as its own atomic step. The first
	// failing step aborts the rest.
	if len(toRemove) > 0 {
		if err := s.identity.RemoveRoles(ctx, id, toRemove); err != nil {
			s.log.Error(err, fmt.Sprintf("role removal failed for user %s", id))
			return apperror.PartialFailure("remove roles", err)
		}
	}
	if len(toAdd) > 0 {
		if err := s.identity.AddRoles(ctx, id, toAdd); err != nil {
			s.log.Error(err, fmt.Sprintf("role addition failed for user %s", id))
			return apperror.PartialFailure("add roles", err)
		}
	}

	return nil
}

// DeleteUser removes an account. Articles the user authored survive with
// a nullified author reference. Admin only.
func (s *UserService) DeleteUser(ctx context.Context, principal auth.Principal, id string) error {
	if !auth.CanManageUsers(principal) {
		return apperror.Forbidden("user management requires the Admin role")
	}
	user, err := s.identity.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return apperror.NotFound("user", id)
	}
	if err := s.identity.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// difference returns the elements of a that are not in b, preserving the
// order of a.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		seen[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := seen[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
