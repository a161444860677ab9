package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"shary/internal/domain"
)

// Client talks JSON to the relay. After registration every call carries the
// bearer token the relay issued.
type Client struct {
	base string
	http *http.Client

	mu    sync.Mutex
	token string
}

func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, http: httpClient}
}

var _ domain.RelayClient = (*Client)(nil)

// SetToken stores the bearer token attached to subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Ping probes relay liveness.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.get(ctx, "/ping")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay ping: %s", resp.Status)
	}
	return nil
}

// StoreUser registers the owner's public key. A 200 returns the issued
// token; a 409 means the owner is already registered and maps to
// ErrAlreadyExists with no token.
func (c *Client) StoreUser(ctx context.Context, rec domain.UserRecord) (string, error) {
	resp, err := c.post(ctx, "/store_user", rec)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", err
		}
		return out.Token, nil
	case http.StatusConflict:
		return "", domain.ErrAlreadyExists
	default:
		return "", fmt.Errorf("relay store_user: %s", resp.Status)
	}
}

// FetchPublicKey returns the serialized public key registered for ownerHash.
func (c *Client) FetchPublicKey(ctx context.Context, ownerHash string) (string, error) {
	resp, err := c.get(ctx, "/get_pubkey?owner="+url.QueryEscape(ownerHash))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("relay get_pubkey: %s", resp.Status)
	}
	var out struct {
		PubKey string `json:"pubkey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.PubKey, nil
}

// StorePayload posts one envelope and returns the HTTP status code. Protocol
// errors (400/409/500) are values for the caller to map, not errors;
// only transport failures return a non-nil error.
func (c *Client) StorePayload(ctx context.Context, env domain.Envelope) (int, error) {
	resp, err := c.post(ctx, "/store_payload", env)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// DeleteUser removes the owner's registration. The signature proves key
// ownership to the relay.
func (c *Client) DeleteUser(ctx context.Context, ownerHash, signature string) error {
	resp, err := c.post(ctx, "/delete_user", map[string]string{
		"owner":     ownerHash,
		"signature": signature,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay delete_user: %s", resp.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, in any) (*http.Response, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	return resp, nil
}
