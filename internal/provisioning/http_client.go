package provisioning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/org-service/internal/config"
)

// HTTPClient implements Client against the passport REST endpoint of the
// identity platform.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTTPClient builds a client with the configured timeout. The timeout is
// the bound on each remote call; an expired deadline surfaces as a plain
// error and is classified as a provisioning failure by the caller.
func NewHTTPClient(cfg config.ProvisioningConfig, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FindAccountByBind looks up the account bound to the canonicalized value.
func (c *HTTPClient) FindAccountByBind(ctx context.Context, bindType BindType, iso, value string) (*Account, error) {
	canonical, err := bindType.Canonical(value, iso)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/account/findByBind/%s?iso=%s&value=%s",
		c.baseURL, bindType, url.QueryEscape(iso), url.QueryEscape(canonical))

	var account Account
	found, err := c.get(ctx, endpoint, &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &account, nil
}

// SignUp registers a new account for the canonicalized bind value.
func (c *HTTPClient) SignUp(ctx context.Context, form SignUpForm) (*SignUpResult, error) {
	canonical, err := form.AccountType.Canonical(form.Account, form.Iso)
	if err != nil {
		return nil, err
	}
	form.Account = canonical

	body, err := json.Marshal(form)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/passport/signUp", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signUp request: %w", err)
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("signUp rejected: %s", env.Message)
	}

	var result SignUpResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("decode signUp result: %w", err)
	}
	c.logger.Info("account signed up",
		zap.Int64("user_id", result.UserID),
		zap.String("username", result.Username),
		zap.Duration("took", time.Since(start)))
	return &result, nil
}

// SignDown deactivates the account. A missing account is treated as success.
func (c *HTTPClient) SignDown(ctx context.Context, accountID int64) (bool, error) {
	endpoint := c.baseURL + "/passport/signDown/" + strconv.FormatInt(accountID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("signDown request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Account already removed upstream.
		return true, nil
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, fmt.Errorf("signDown rejected: %s", env.Message)
	}

	var result bool
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return false, fmt.Errorf("decode signDown result: %w", err)
		}
	} else {
		result = true
	}
	return result, nil
}

func (c *HTTPClient) get(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("provisioning request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, fmt.Errorf("provisioning call rejected: %s", env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, fmt.Errorf("decode provisioning response: %w", err)
	}
	return true, nil
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("provisioning endpoint returned %d", resp.StatusCode)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode provisioning envelope: %w", err)
	}
	return &env, nil
}
