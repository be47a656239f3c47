//go:build unit

package auth

import (
	"testing"

	"go-portal-app/internal/data"
)

func TestPrincipal_IsAuthenticated(t *testing.T) {
	if Anonymous().IsAuthenticated() {
		t.Error("anonymous principal must not be authenticated")
	}
	p := Principal{ID: "auth0|123"}
	if !p.IsAuthenticated() {
		t.Error("principal with a subject must be authenticated")
	}
}

func TestCanMutateArticle(t *testing.T) {
	owner := "auth0|owner"
	article := &data.Article{ID: 1, AuthorID: &owner}

	t.Run("author may mutate", func(t *testing.T) {
		if !CanMutateArticle(Principal{ID: owner}, article) {
			t.Error("expected the author to pass the ownership check")
		}
	})

	t.Run("other users may not", func(t *testing.T) {
		if CanMutateArticle(Principal{ID: "auth0|other", Roles: []string{RoleAdmin}}, article) {
			t.Error("ownership check must ignore roles on the public path")
		}
	})

	t.Run("anonymous may not", func(t *testing.T) {
		if CanMutateArticle(Anonymous(), article) {
			t.Error("anonymous must never pass the ownership check")
		}
	})

	t.Run("orphaned article has no owner", func(t *testing.T) {
		orphan := &data.Article{ID: 2, AuthorID: nil}
		if CanMutateArticle(Principal{ID: owner}, orphan) {
			t.Error("nobody may own an article with a nullified author")
		}
	})
}

func TestCanAccessDashboard(t *testing.T) {
	cases := []struct {
		name  string
		roles []string
		want  bool
	}{
		{"admin", []string{RoleAdmin}, true},
		{"editor", []string{RoleEditor}, true},
		{"plain user", []string{RoleUser}, false},
		{"no roles", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Principal{ID: "auth0|x", Roles: tc.roles}
			if got := CanAccessDashboard(p); got != tc.want {
				t.Errorf("CanAccessDashboard(%v) = %v, want %v", tc.roles, got, tc.want)
			}
		})
	}
}

func TestCanManageUsers(t *testing.T) {
	if !CanManageUsers(Principal{ID: "a", Roles: []string{RoleAdmin}}) {
		t.Error("admin must be able to manage users")
	}
	if CanManageUsers(Principal{ID: "e", Roles: []string{RoleEditor}}) {
		t.Error("editor must not be able to manage users")
	}
}
