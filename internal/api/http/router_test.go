package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/api/http/handlers"
	"github.com/spec-kit/org-service/internal/auth"
	"github.com/spec-kit/org-service/internal/config"
	"github.com/spec-kit/org-service/internal/observability"
	"github.com/spec-kit/org-service/internal/provisioning"
	"github.com/spec-kit/org-service/internal/repository"
	"github.com/spec-kit/org-service/internal/service"
)

type stubProvisioner struct {
	mu       sync.Mutex
	accounts map[string]int64
	nextID   int64
}

func (s *stubProvisioner) FindAccountByBind(_ context.Context, _ provisioning.BindType, _, value string) (*provisioning.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.accounts[value]; ok {
		return &provisioning.Account{ID: id, Username: fmt.Sprintf("u%d", id)}, nil
	}
	return nil, nil
}

func (s *stubProvisioner) SignUp(_ context.Context, form provisioning.SignUpForm) (*provisioning.SignUpResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.accounts[form.Account] = s.nextID
	return &provisioning.SignUpResult{UserID: s.nextID, Username: fmt.Sprintf("u%d", s.nextID)}, nil
}

func (s *stubProvisioner) SignDown(_ context.Context, accountID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for value, id := range s.accounts {
		if id == accountID {
			delete(s.accounts, value)
		}
	}
	return true, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	secretHash, err := auth.HashSecret("test-secret", 4)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-jwt-secret",
			AccessTokenTTLMinutes: 5,
			ClientID:              "org-admin",
			ClientSecretHash:      secretHash,
		},
		Provisioning: config.ProvisioningConfig{
			DefaultISO:      "CN",
			DefaultPassword: "okstar.123#",
			TimeoutSeconds:  2,
		},
		Membership: config.MembershipConfig{OccupancyPolicy: config.OccupancyReassign},
	}

	staffRepo := repository.NewMemoryStaffRepository()
	postRepo := repository.NewMemoryPostRepository()
	deptRepo := repository.NewMemoryDepartmentRepository()

	membershipService := service.NewMembershipService(cfg, service.MembershipDependencies{
		StaffRepo:   staffRepo,
		PostRepo:    postRepo,
		Provisioner: &stubProvisioner{accounts: make(map[string]int64), nextID: 500},
	})
	orgService := service.NewStaffService(service.OrgDependencies{
		DepartmentRepo: deptRepo,
		PostRepo:       postRepo,
		StaffRepo:      staffRepo,
	})
	authService := service.NewAuthService(cfg.Auth)

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("org-staff-service", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Staff:          handlers.NewStaffHandler(orgService),
		Membership:     handlers.NewMembershipHandler(membershipService, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func obtainToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/auth/token", "", map[string]string{
		"client_id":     "org-admin",
		"client_secret": "test-secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token status = %d body = %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func TestAuthTokenEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/auth/token", "", map[string]string{
		"client_id":     "org-admin",
		"client_secret": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d body = %v, want 401", resp.StatusCode, body)
	}

	if token := obtainToken(t, app); token == "" {
		t.Fatal("empty token")
	}
}

func TestOrgRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/org/staff", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without token", resp.StatusCode)
	}
}

func TestJoinLeaveOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := obtainToken(t, app)

	_, deptBody := doJSON(t, app, http.MethodPost, "/org/departments", token, map[string]any{"name": "engineering"})
	deptID := int64(deptBody["data"].(map[string]any)["id"].(float64))

	_, postBody := doJSON(t, app, http.MethodPost, "/org/posts", token, map[string]any{
		"department_id": deptID,
		"name":          "backend",
	})
	postID := int64(postBody["data"].(map[string]any)["id"].(float64))

	_, staffBody := doJSON(t, app, http.MethodPost, "/org/staff", token, map[string]any{
		"no":         "E-001",
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane@example.com",
	})
	staffID := int64(staffBody["data"].(map[string]any)["id"].(float64))

	resp, joinBody := doJSON(t, app, http.MethodPost, fmt.Sprintf("/org/staff/%d/join", staffID), token, map[string]any{
		"post_ids": []int64{postID},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d body = %v", resp.StatusCode, joinBody)
	}

	resp, getBody := doJSON(t, app, http.MethodGet, fmt.Sprintf("/org/staff/%d", staffID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get staff status = %d", resp.StatusCode)
	}
	data := getBody["data"].(map[string]any)
	if data["post_status"] != "EMPLOYED" {
		t.Fatalf("post_status = %v, want EMPLOYED", data["post_status"])
	}
	if data["account_id"] == nil {
		t.Fatal("account not provisioned through join")
	}

	resp, rosterBody := doJSON(t, app, http.MethodGet, fmt.Sprintf("/org/departments/%d/staff", deptID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("roster status = %d", resp.StatusCode)
	}
	if roster := rosterBody["data"].([]any); len(roster) != 1 {
		t.Fatalf("roster = %v, want one member", roster)
	}

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/org/staff/%d/leave", staffID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leave status = %d", resp.StatusCode)
	}

	_, getBody = doJSON(t, app, http.MethodGet, fmt.Sprintf("/org/staff/%d", staffID), token, nil)
	if getBody["data"].(map[string]any)["post_status"] != "LEFT" {
		t.Fatal("staff not marked LEFT after leave")
	}

	resp, errBody := doJSON(t, app, http.MethodPost, "/org/staff/999/join", token, map[string]any{"post_ids": []int64{postID}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("join unknown staff status = %d body = %v", resp.StatusCode, errBody)
	}
}
