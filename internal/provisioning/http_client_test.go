package provisioning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(config.ProvisioningConfig{
		BaseURL:        server.URL,
		TimeoutSeconds: 2,
	}, zap.NewNop())
}

func TestFindAccountByBind(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/findByBind/email" {
			t.Errorf("path = %s", r.URL.Path)
		}
		switch r.URL.Query().Get("value") {
		case "jane@example.com":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    map[string]any{"id": 77, "username": "jane77", "iso": "CN"},
			})
		case "nobody@example.com":
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": nil})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	account, err := client.FindAccountByBind(context.Background(), BindTypeEmail, "CN", "Jane@Example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if account == nil || account.ID != 77 || account.Username != "jane77" {
		t.Fatalf("account = %+v", account)
	}

	// A null data payload means no account is bound.
	account, err = client.FindAccountByBind(context.Background(), BindTypeEmail, "CN", "nobody@example.com")
	if err != nil {
		t.Fatalf("find absent: %v", err)
	}
	if account != nil {
		t.Fatalf("account = %+v, want nil", account)
	}

	// A 404 also means no account is bound.
	account, err = client.FindAccountByBind(context.Background(), BindTypeEmail, "CN", "missing@example.com")
	if err != nil {
		t.Fatalf("find 404: %v", err)
	}
	if account != nil {
		t.Fatalf("account = %+v, want nil", account)
	}
}

func TestSignUpSendsCanonicalBind(t *testing.T) {
	var received SignUpForm
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/passport/signUp" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode form: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"userId": 88, "username": "gen88"},
		})
	}))

	result, err := client.SignUp(context.Background(), SignUpForm{
		AccountType: BindTypeEmail,
		Iso:         "CN",
		Account:     "  Jane@Example.COM ",
		Password:    "okstar.123#",
		FirstName:   "Jane",
		LastName:    "Doe",
	})
	if err != nil {
		t.Fatalf("signUp: %v", err)
	}
	if result.UserID != 88 || result.Username != "gen88" {
		t.Fatalf("result = %+v", result)
	}
	if received.Account != "jane@example.com" {
		t.Fatalf("sent account = %q, want canonical form", received.Account)
	}
}

func TestSignUpRejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "already registered"})
	}))

	if _, err := client.SignUp(context.Background(), SignUpForm{
		AccountType: BindTypeEmail,
		Iso:         "CN",
		Account:     "jane@example.com",
	}); err == nil {
		t.Fatal("expected error for rejected sign-up")
	}
}

func TestSignDownTreatsMissingAsSuccess(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/passport/signDown/77":
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	ok, err := client.SignDown(context.Background(), 77)
	if err != nil || !ok {
		t.Fatalf("signDown existing: ok=%v err=%v", ok, err)
	}

	ok, err = client.SignDown(context.Background(), 404404)
	if err != nil || !ok {
		t.Fatalf("signDown absent: ok=%v err=%v, want idempotent success", ok, err)
	}
}
