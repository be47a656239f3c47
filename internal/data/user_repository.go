package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for users and their role
// memberships. It is the storage side of the identity provider: password
// hashing and token verification live elsewhere.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert records a user seen at login. On first sight the row is inserted
// with its registration timestamp; on later logins only email and full
// name are refreshed. registered_at is set exactly once.
//
// The existence check is a SELECT rather than a keyed-on-RowsAffected
// UPDATE: the mysql driver reports rows changed, not rows matched, so an
// UPDATE with unchanged claims would look like a missing row.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int64
	if err := tx.GetContext(ctx, &exists,
		`SELECT COUNT(*) FROM users WHERE id = ?`, user.ID); err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if exists > 0 {
		if _, err := tx.NamedExecContext(ctx,
			`UPDATE users SET email = :email, full_name = :full_name WHERE id = :id`, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
	} else {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO users (id, email, full_name, registered_at) VALUES (:id, :email, :full_name, :registered_at)`,
			user); err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
	}

	return tx.Commit()
}

// FindByID retrieves a user by its opaque ID. A missing row is (nil, nil).
func (r *UserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, email, full_name, registered_at FROM users WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// List retrieves all users ordered by registration, newest first.
func (r *UserRepository) List(ctx context.Context) ([]*User, error) {
	var users []*User
	err := r.db.SelectContext(ctx, &users,
		`SELECT id, email, full_name, registered_at FROM users ORDER BY registered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateProfile persists the mutable profile fields of a user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, fullName *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET full_name = ? WHERE id = ?`, fullName, id)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no user found to update with id %s", id)
	}
	return nil
}

// Delete removes a user. Articles authored by the user survive with their
// author reference nullified, and role memberships go with the account.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE articles SET author_id = NULL WHERE author_id = ?`, id); err != nil {
		return fmt.Errorf("failed to nullify article author references: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete role memberships: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no user found to delete with id %s", id)
	}

	return tx.Commit()
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// GetRoles returns the role names held by a user, sorted by name.
func (r *UserRepository) GetRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []string
	query := `SELECT r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = ?
		ORDER BY r.name`
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get roles for user %s: %w", userID, err)
	}
	return roles, nil
}

// ListRoles returns all known roles ordered by name.
func (r *UserRepository) ListRoles(ctx context.Context) ([]*Role, error) {
	var roles []*Role
	if err := r.db.SelectContext(ctx, &roles, `SELECT id, name FROM roles ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// RoleExists reports whether a role with the given name is defined.
func (r *UserRepository) RoleExists(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM roles WHERE name = ?`, name); err != nil {
		return false, fmt.Errorf("failed to check role %s: %w", name, err)
	}
	return count > 0, nil
}

// AddRoles grants the named roles to a user in one transaction. Unknown
// role names fail the whole call; memberships the user already holds are
// skipped so the operation stays idempotent.
func (r *UserRepository) AddRoles(ctx context.Context, userID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		var roleID int64
		if err := tx.GetContext(ctx, &roleID, `SELECT id FROM roles WHERE name = ?`, name); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("role %q does not exist", name)
			}
			return fmt.Errorf("failed to resolve role %s: %w", name, err)
		}

		var held int64
		err := tx.GetContext(ctx, &held,
			`SELECT COUNT(*) FROM user_roles WHERE user_id = ? AND role_id = ?`, userID, roleID)
		if err != nil {
			return fmt.Errorf("failed to check membership for role %s: %w", name, err)
		}
		if held > 0 {
			continue
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, userID, roleID); err != nil {
			return fmt.Errorf("failed to add role %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// RemoveRoles revokes the named roles from a user in one transaction.
func (r *UserRepository) RemoveRoles(ctx context.Context, userID string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range names {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM user_roles WHERE user_id = ? AND role_id = (SELECT id FROM roles WHERE name = ?)`,
			userID, name)
		if err != nil {
			return fmt.Errorf("failed to remove role %s: %w", name, err)
		}
	}

	return tx.Commit()
}
