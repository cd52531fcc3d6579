package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"branch-pos-service/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID int64
	Role   auth.UserRole
	Email  string
	Name   string
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}

// StaffAuth verifies the bearer token and checks the staff row is still
// active in the branch store; the reconciler may have deactivated it since
// the token was issued.
func StaffAuth(db *pgxpool.Pool, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			var (
				isActive bool
				role     string
			)
			if err := db.QueryRow(r.Context(), `
				select is_active, role from users where id = $1
			`, claims.UserID).Scan(&isActive, &role); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Staff account not found")
				return
			}
			if !isActive {
				writeAuthError(w, http.StatusForbidden, "Staff account is deactivated")
				return
			}

			userRole, ok := auth.ParseRole(role)
			if !ok {
				userRole = claims.Role
			}

			authCtx := &AuthContext{
				UserID: claims.UserID,
				Role:   userRole,
				Email:  claims.Email,
				Name:   claims.Name,
			}
			next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), authCtx)))
		})
	}
}
