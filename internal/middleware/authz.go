package middleware

import (
	"context"
	"net/http"

	"go-portal-app/internal/auth"
	"go-portal-app/internal/session"

	"github.com/casbin/casbin/v2"
)

// SessionSubjectKey is the session key holding the signed-in user's subject.
const SessionSubjectKey = "user_subject"

// RolesLoader resolves the role names a user currently holds. It is the
// slice of the identity store the authorizer needs.
type RolesLoader interface {
	GetRoles(ctx context.Context, userID string) ([]string, error)
}

// Authorizer creates a middleware that resolves the acting principal from
// the session and enforces route-level Casbin policies for it. Fine-grained
// ownership decisions stay in the service layer; this gate only answers
// "may this kind of actor reach this route at all".
func Authorizer(e *casbin.Enforcer, sm session.Manager, roles RolesLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := auth.Anonymous()
			if subject := sm.GetString(r.Context(), SessionSubjectKey); subject != "" {
				held, err := roles.GetRoles(r.Context(), subject)
				if err != nil {
					http.Error(w, "Authorization error", http.StatusInternalServerError)
					return
				}
				principal = auth.Principal{ID: subject, Roles: held}
			}

			r = r.WithContext(SetPrincipal(r.Context(), principal))

			// Enforce for each role the principal holds, falling back to the
			// anonymous subject. Role inheritance in the policy store means a
			// single match is enough.
			subjects := append([]string{}, principal.Roles...)
			subjects = append(subjects, "anonymous")

			allowed := false
			for _, sub := range subjects {
				ok, err := e.Enforce(sub, r.URL.Path, r.Method)
				if err != nil {
					http.Error(w, "Authorization error", http.StatusInternalServerError)
					return
				}
				if ok {
					allowed = true
					break
				}
			}

			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
