package middleware

import (
	"context"
	"net/http"
	"strings"

	"judgeboard/internal/app/access"
	"judgeboard/internal/common"
	"judgeboard/internal/common/security"
	"judgeboard/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	RequesterCtxKey contextKey = "requester"
	SessionIDCtxKey contextKey = "sessionID"
)

// Authenticator requires a valid bearer token and puts the requester identity
// and session ID into the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}
		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		username, err := security.GetUsernameFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		role, err := security.GetUserRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		sessionID, err := security.GetSessionIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		requester := access.Requester{ID: userID, Username: username, Role: role}
		ctx := context.WithValue(r.Context(), RequesterCtxKey, requester)
		ctx = context.WithValue(ctx, SessionIDCtxKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MaybeAuthenticator populates the requester context when a valid token is
// present and lets the request through anonymously otherwise. Listing and
// detail endpoints are reachable without a login; the access gate then treats
// the requester as unverified everywhere.
func MaybeAuthenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, errID := security.GetUserIDFromClaims(claims)
		username, errName := security.GetUsernameFromClaims(claims)
		role, errRole := security.GetUserRoleFromClaims(claims)
		sessionID, errSid := security.GetSessionIDFromClaims(claims)
		if errID != nil || errName != nil || errRole != nil || errSid != nil {
			next.ServeHTTP(w, r)
			return
		}

		requester := access.Requester{ID: userID, Username: username, Role: role}
		ctx := context.WithValue(r.Context(), RequesterCtxKey, requester)
		ctx = context.WithValue(ctx, SessionIDCtxKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, ok := GetRequesterFromContext(r.Context())
		if !ok || requester.Role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetRequesterFromContext(ctx context.Context) (access.Requester, bool) {
	requester, ok := ctx.Value(RequesterCtxKey).(access.Requester)
	return requester, ok
}

func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDCtxKey).(string)
	return sessionID, ok
}
