package handlers

import (
	"blockpreview/config"
	"blockpreview/state"
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestLogin(t *testing.T) {
	setupTestEnv(t)
	r := testRouter()

	prevHash := config.Settings.AdminPasswordHash
	t.Cleanup(func() { config.Settings.AdminPasswordHash = prevHash })

	// Unconfigured admin password disables login entirely.
	config.Settings.AdminPasswordHash = ""
	w := doJSON(t, r, http.MethodPost, "/api/login", "", map[string]string{"password": "whatever"}, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when unconfigured, got %d", w.Code)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	config.Settings.AdminPasswordHash = string(hash)

	w = doJSON(t, r, http.MethodPost, "/api/login", "", map[string]string{"password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", w.Code)
	}

	var resp struct {
		Token string `json:"token"`
	}
	w = doJSON(t, r, http.MethodPost, "/api/login", "", map[string]string{"password": "open sesame"}, &resp)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid password, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	if !state.Global.Valid(resp.Token) {
		t.Fatal("issued token should be a live session")
	}
	state.Global.Revoke(resp.Token)
}
