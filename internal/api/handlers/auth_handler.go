package handlers

import (
	"encoding/json"
	"net/http"

	appMiddleware "github.com/markdave123-py/DocShare/internal/api/middlewares"
	"github.com/markdave123-py/DocShare/internal/models"
	"github.com/markdave123-py/DocShare/internal/services"
)

type AuthHandler struct {
	users  *services.UserService
	secret string
}

func NewAuthHandler(users *services.UserService, jwtSecret string) *AuthHandler {
	return &AuthHandler{users: users, secret: jwtSecret}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := h.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	token, err := appMiddleware.IssueToken(h.secret, user, appMiddleware.DefaultTokenTTL)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	token, err := appMiddleware.IssueToken(h.secret, user, appMiddleware.DefaultTokenTTL)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}{token, user})
}

// Me returns the caller's session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := appMiddleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
