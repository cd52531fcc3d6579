package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"branch-pos-service/internal/auth"
	"branch-pos-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login authenticates branch staff against the local users table and
// issues a bearer token scoped to this branch.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email and password are required")
		return
	}

	var (
		userID       int64
		firstName    string
		lastName     pgtype.Text
		role         string
		isActive     bool
		passwordHash string
	)
	err := h.DB.QueryRow(ctx, `
		select id, first_name, last_name, role, is_active, password_hash
		from users
		where lower(email) = $1
	`, email).Scan(&userID, &firstName, &lastName, &role, &isActive, &passwordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}
	if err != nil {
		h.Logger.Error("login lookup failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	if !isActive {
		response.Error(w, http.StatusForbidden, "ACCOUNT_DISABLED", "This account has been deactivated")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(body.Password)) != nil {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	}

	userRole, ok := auth.ParseRole(role)
	if !ok {
		h.Logger.Error("user has unknown role", zap.Int64("userId", userID), zap.String("role", role))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	name := firstName
	if lastName.Valid && lastName.String != "" {
		name = firstName + " " + lastName.String
	}

	token, err := auth.IssueAccessToken(auth.Claims{
		UserID: userID,
		Role:   userRole,
		Email:  email,
		Name:   name,
		Branch: h.Config.BranchCode,
	}, h.Config.JWTSecret, time.Duration(h.Config.JWTExpirySeconds)*time.Second)
	if err != nil {
		h.Logger.Error("token issue failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	response.Success(w, map[string]any{
		"token":     token,
		"expiresIn": h.Config.JWTExpirySeconds,
		"user": map[string]any{
			"id":     userID,
			"email":  email,
			"name":   name,
			"role":   string(userRole),
			"branch": h.Config.BranchCode,
		},
	})
}
