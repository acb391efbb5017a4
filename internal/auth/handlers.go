package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	DB     *sqlx.DB
	Secret []byte
	TTL    time.Duration
	Log    *zap.Logger
}

func NewHandler(db *sqlx.DB, secret []byte, ttl time.Duration, log *zap.Logger) *Handler {
	return &Handler{DB: db, Secret: secret, TTL: ttl, Log: log}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
}

// ------------------------------------------------------------------
// Registration: POST /auth/register
// ------------------------------------------------------------------

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		http.Error(w, "invalid email", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		http.Error(w, "password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	// check duplicate email
	var exists int
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT COUNT(*) FROM users WHERE email=$1", req.Email,
	).Scan(&exists)
	if err == nil && exists > 0 {
		http.Error(w, "Email already registered", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "hash error", http.StatusInternalServerError)
		return
	}

	var id int64
	err = h.DB.QueryRowContext(r.Context(),
		"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id",
		req.Email, string(hash),
	).Scan(&id)
	if err != nil {
		h.Log.Error("register insert failed", zap.Error(err))
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	token, err := GenerateToken(h.Secret, id, req.Email, h.TTL)
	if err != nil {
		h.Log.Error("token generation failed", zap.Error(err))
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("user registered", zap.Int64("user_id", id))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      id,
		Email:       req.Email,
	})
}

// ------------------------------------------------------------------
// Login: POST /auth/login (form: username=email, password)
// ------------------------------------------------------------------

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	userEmail := strings.TrimSpace(strings.ToLower(r.PostFormValue("username")))
	password := r.PostFormValue("password")

	var (
		id   int64
		hash string
	)
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT id, password_hash FROM users WHERE email=$1", userEmail,
	).Scan(&id, &hash)

	if errors.Is(err, sql.ErrNoRows) ||
		(err == nil && bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, "Incorrect email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Log.Error("login query failed", zap.Error(err))
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	token, err := GenerateToken(h.Secret, id, userEmail, h.TTL)
	if err != nil {
		h.Log.Error("token generation failed", zap.Error(err))
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      id,
		Email:       userEmail,
	})
}

// ------------------------------------------------------------------
// Get current user: GET /auth/me
// ------------------------------------------------------------------

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var userEmail string
	err := h.DB.QueryRowContext(r.Context(),
		"SELECT email FROM users WHERE id=$1", uid,
	).Scan(&userEmail)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":    uid,
		"email": userEmail,
	})
}

// Logout is stateless: the client drops the token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
