package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// DeleteAccount removes the caller's tasks and then the user record in a
// single transaction. DELETE /auth/account
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	uid, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tx, err := h.DB.BeginTxx(r.Context(), nil)
	if err != nil {
		http.Error(w, "db begin failed", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks WHERE user_id = $1`, uid); err != nil {
		http.Error(w, "delete tasks failed", http.StatusInternalServerError)
		return
	}

	if _, err := tx.Exec(`DELETE FROM users WHERE id = $1`, uid); err != nil {
		http.Error(w, "delete user failed", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		http.Error(w, "db commit failed", http.StatusInternalServerError)
		return
	}

	h.Log.Info("account deleted", zap.Int64("user_id", uid))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
