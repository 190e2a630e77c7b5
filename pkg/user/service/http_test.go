package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newUserTestServer(store *fakeStore) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(store, zap.NewNop()), zap.NewNop())
	return r
}

func TestUserHTTP_Register_Created(t *testing.T) {
	handler := newUserTestServer(newFakeStore())

	body := `{"walletAddress":"0xAbC1","name":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got struct {
		Success bool `json:"success"`
		User    struct {
			WalletAddress string `json:"walletAddress"`
			Name          string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if !got.Success {
		t.Error("expected success true")
	}
	if got.User.WalletAddress != "0xabc1" || got.User.Name != "alice" {
		t.Errorf("expected normalized user, got %+v", got.User)
	}
}

func TestUserHTTP_Register_DuplicateName_Conflict(t *testing.T) {
	handler := newUserTestServer(newFakeStore())

	register := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := register(`{"walletAddress":"0xaa","name":"alice"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first register: expected %d, got %d", http.StatusCreated, rec.Code)
	}
	rec := register(`{"walletAddress":"0xbb","name":"alice"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second register: expected %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestUserHTTP_GetByName(t *testing.T) {
	store := newFakeStore()
	handler := newUserTestServer(store)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(`{"walletAddress":"0xaa","name":"alice"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed with %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got struct {
		User struct {
			WalletAddress string `json:"walletAddress"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.User.WalletAddress != "0xaa" {
		t.Errorf("expected wallet 0xaa, got %q", got.User.WalletAddress)
	}
}

func TestUserHTTP_GetByName_NotFound(t *testing.T) {
	handler := newUserTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/users/nobody", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUserHTTP_List(t *testing.T) {
	store := newFakeStore()
	handler := newUserTestServer(store)

	for _, body := range []string{
		`{"walletAddress":"0xaa","name":"alice"}`,
		`{"walletAddress":"0xbb","name":"bob"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("register failed with %d", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got struct {
		Users []json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if len(got.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got.Users))
	}
}
