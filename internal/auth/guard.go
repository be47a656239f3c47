package auth

import (
	"go-portal-app/internal/data"
)

// Role names known to the portal. The set is seeded by migration but not
// closed; the reconciler accepts any role present in the roles table.
const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleUser   = "User"
)

// Principal is the authenticated actor making a request: an opaque subject
// identifier plus the set of role names it holds. The anonymous visitor is
// a Principal with an empty ID and no roles.
type Principal struct {
	ID    string
	Roles []string
}

// Anonymous is the principal used for unauthenticated requests.
func Anonymous() Principal {
	return Principal{}
}

// IsAuthenticated reports whether the principal represents a signed-in user.
func (p Principal) IsAuthenticated() bool {
	return p.ID != ""
}

// HasRole reports whether the principal holds the named role.
func (p Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// CanMutateArticle decides whether the principal may edit or delete the
// given article on the public, ownership-checked path: only the author may.
// An article whose author reference was nullified has no owner left, so
// nobody passes this check and only the dashboard path can touch it.
func CanMutateArticle(p Principal, article *data.Article) bool {
	if !p.IsAuthenticated() || article.AuthorID == nil {
		return false
	}
	return *article.AuthorID == p.ID
}

// CanAccessDashboard decides whether the principal may enter the admin
// dashboard: Admin and Editor both qualify.
func CanAccessDashboard(p Principal) bool {
	return p.HasRole(RoleAdmin) || p.HasRole(RoleEditor)
}

// CanManageUsers decides whether the principal may manage user accounts
// and role assignment. Unlike the rest of the dashboard, Editor is not
// enough here.
func CanManageUsers(p Principal) bool {
	return p.HasRole(RoleAdmin)
}
