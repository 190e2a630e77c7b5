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

func newRequestTestServer(store *fakeStore) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(store, nil, 8, zap.NewNop()), zap.NewNop())
	return r
}

func createViaHTTP(t *testing.T, handler http.Handler) string {
	t.Helper()

	body := `{"requesterAddress":"0x4E91","payerAddress":"0xFA71","amount":"100000000","memo":"lunch"}`
	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got struct {
		Request struct {
			RequestID string `json:"requestId"`
		} `json:"request"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Request.RequestID == "" {
		t.Fatal("expected request id in response")
	}
	return got.Request.RequestID
}

func TestRequestHTTP_Create(t *testing.T) {
	store := newFakeStore()
	handler := newRequestTestServer(store)

	id := createViaHTTP(t, handler)
	if store.requests[id] == nil {
		t.Fatalf("expected request %q stored", id)
	}
}

func TestRequestHTTP_Create_InvalidJSON(t *testing.T) {
	handler := newRequestTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestRequestHTTP_AcceptFlow(t *testing.T) {
	store := newFakeStore()
	handler := newRequestTestServer(store)
	id := createViaHTTP(t, handler)

	body := `{"txHash":"0xsettled"}`
	req := httptest.NewRequest(http.MethodPost, "/requests/"+id+"/accept", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got struct {
		Success bool `json:"success"`
		Request struct {
			Status string `json:"status"`
			TxHash string `json:"txHash"`
		} `json:"request"`
		Payment *struct {
			Status          string `json:"status"`
			TransactionHash string `json:"transactionHash"`
		} `json:"payment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Request.Status != "paid" {
		t.Errorf("expected status paid, got %q", got.Request.Status)
	}
	if got.Payment == nil {
		t.Fatal("expected settlement payment in response")
	}
	if got.Payment.Status != "completed" {
		t.Errorf("expected payment completed, got %q", got.Payment.Status)
	}
	if got.Payment.TransactionHash != "0xsettled" {
		t.Errorf("expected payment hash %q, got %q", "0xsettled", got.Payment.TransactionHash)
	}
}

func TestRequestHTTP_Accept_SecondCallConflicts(t *testing.T) {
	store := newFakeStore()
	handler := newRequestTestServer(store)
	id := createViaHTTP(t, handler)

	accept := func(hash string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/requests/"+id+"/accept",
			bytes.NewBufferString(`{"txHash":"`+hash+`"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := accept("0xfirst"); rec.Code != http.StatusOK {
		t.Fatalf("first accept: expected %d, got %d", http.StatusOK, rec.Code)
	}
	rec := accept("0xsecond")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second accept: expected %d, got %d", http.StatusConflict, rec.Code)
	}

	var got struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Success {
		t.Error("expected success false")
	}
	if got.Error == "" {
		t.Error("expected error message")
	}
}

func TestRequestHTTP_Accept_MissingRequest_NotFound(t *testing.T) {
	handler := newRequestTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodPost, "/requests/nope/accept", bytes.NewBufferString(`{"txHash":"0xh"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestRequestHTTP_Reject(t *testing.T) {
	store := newFakeStore()
	handler := newRequestTestServer(store)
	id := createViaHTTP(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/requests/"+id+"/reject", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got struct {
		Request struct {
			Status string `json:"status"`
		} `json:"request"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Request.Status != "rejected" {
		t.Errorf("expected status rejected, got %q", got.Request.Status)
	}
}

func TestRequestHTTP_List(t *testing.T) {
	store := newFakeStore()
	handler := newRequestTestServer(store)
	createViaHTTP(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/requests?payerAddress=0xFA71", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got struct {
		Success  bool `json:"success"`
		Requests []struct {
			PayerAddress string `json:"payerAddress"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if len(got.Requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(got.Requests))
	}
	if got.Requests[0].PayerAddress != "0xfa71" {
		t.Errorf("expected payer 0xfa71, got %q", got.Requests[0].PayerAddress)
	}
}

func TestRequestHTTP_List_WithoutFilter_BadRequest(t *testing.T) {
	handler := newRequestTestServer(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/requests", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
