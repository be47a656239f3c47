package auth

import (
	"fmt"
	"go-portal-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// SeedDefaultPolicies ensures the application has a baseline set of route
// authorization rules. Each policy is checked before being added, making
// the operation idempotent and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	policies := [][]string{
		// Anonymous visitors can browse and search published content and
		// reach the login flow.
		{"anonymous", "/articles", "GET"},
		{"anonymous", "/articles/*", "GET"},
		{"anonymous", "/categories", "GET"},
		{"anonymous", "/categories/*", "GET"},
		{"anonymous", "/auth/login", "GET"},
		{"anonymous", "/auth/callback", "GET"},
		{"anonymous", "/auth/logout", "POST"},

		// Any signed-in user can publish and manage their own articles.
		// Ownership of a specific article is checked in the service layer,
		// not here.
		{RoleUser, "/articles", "POST"},
		{RoleUser, "/articles/*", "PUT"},
		{RoleUser, "/articles/*", "DELETE"},

		// Editors run the dashboard for articles and categories.
		{RoleEditor, "/admin", "GET"},
		{RoleEditor, "/admin/articles", "GET"},
		{RoleEditor, "/admin/articles/*", "DELETE"},
		{RoleEditor, "/admin/categories", "GET"},
		{RoleEditor, "/admin/categories", "POST"},
		{RoleEditor, "/admin/categories/*", "PUT"},
		{RoleEditor, "/admin/categories/*", "DELETE"},

		// The users sub-area is Admin-only; Editor is not enough.
		{RoleAdmin, "/admin/users", "GET"},
		{RoleAdmin, "/admin/users/*", "GET"},
		{RoleAdmin, "/admin/users/*", "PUT"},
		{RoleAdmin, "/admin/users/*", "DELETE"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	// Role inheritance: Admin inherits Editor, Editor inherits User, and
	// User inherits anonymous.
	groupings := [][2]string{
		{RoleAdmin, RoleEditor},
		{RoleEditor, RoleUser},
		{RoleUser, "anonymous"},
	}
	for _, g := range groupings {
		if has, _ := e.HasRoleForUser(g[0], g[1]); !has {
			if _, err := e.AddRoleForUser(g[0], g[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role inheritance %s -> %s", g[0], g[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
