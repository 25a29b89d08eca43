// Package remote is the HTTP boundary to the photovault server. Every
// value crossing it is wrapped ciphertext, public keys, or KDF parameters;
// the transport layer never sees a raw key.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"photovault/internal/logging"
)

var (
	ErrUnauthorized = errors.New("remote: unauthorized")
	ErrNotFound     = errors.New("remote: not found")
)

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  *logging.Logger
}

type Client struct {
	http *resty.Client
	log  *logging.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)
	return &Client{http: cli, log: log}
}

// SetToken installs the bearer token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// SessionValid reports whether the installed token exists and has not
// expired. Claims are read unverified: signature verification is the
// server's job, the client only decides whether a re-login prompt is due.
func (c *Client) SessionValid() bool {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		return false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(time.Now())
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json")
	c.mu.RLock()
	if c.token != "" {
		req.SetHeader("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()
	return req
}

// RegisterVault persists the create-time record for a new vault.
func (c *Client) RegisterVault(ctx context.Context, rec VaultRecord) error {
	resp, err := c.request(ctx).SetBody(rec).Post("/api/vaults")
	if err != nil {
		return fmt.Errorf("register vault: %w", err)
	}
	return mapHTTPError(resp)
}

// VaultChallenge fetches the wrapped vault key and KDF parameters needed
// for a password unlock.
func (c *Client) VaultChallenge(ctx context.Context, vaultID string) (*Challenge, error) {
	resp, err := c.request(ctx).Get("/api/vaults/" + vaultID + "/challenge")
	if err != nil {
		return nil, fmt.Errorf("vault challenge: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	var ch Challenge
	if err = json.Unmarshal(resp.Body(), &ch); err != nil {
		return nil, fmt.Errorf("decode vault challenge: %w", err)
	}
	return &ch, nil
}

// BeginAuthenticatorUnlock asks the server to open a hardware unlock
// ceremony. The wrap source in the reply is only released after the server
// verified the authenticator assertion, which is what keeps the XOR
// unwrapping on the client honest.
func (c *Client) BeginAuthenticatorUnlock(ctx context.Context, vaultID string) (*AuthenticatorChallenge, error) {
	resp, err := c.request(ctx).Post("/api/vaults/" + vaultID + "/hardware-unlock")
	if err != nil {
		return nil, fmt.Errorf("begin authenticator unlock: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	var ch AuthenticatorChallenge
	if err = json.Unmarshal(resp.Body(), &ch); err != nil {
		return nil, fmt.Errorf("decode authenticator challenge: %w", err)
	}
	return &ch, nil
}

// PutWrappedContentKey uploads an object's wrapped content key.
func (c *Client) PutWrappedContentKey(ctx context.Context, objectID, wrapped string) error {
	rec := ObjectRecord{ObjectID: objectID, WrappedContentKey: wrapped}
	resp, err := c.request(ctx).SetBody(rec).Put("/api/objects/" + objectID + "/key")
	if err != nil {
		return fmt.Errorf("put wrapped content key: %w", err)
	}
	return mapHTTPError(resp)
}

// PublishPublicKey uploads the user's sharing public key.
func (c *Client) PublishPublicKey(ctx context.Context, publicKey string) error {
	body := map[string]string{"public_key": publicKey}
	resp, err := c.request(ctx).SetBody(body).Put("/api/users/me/public-key")
	if err != nil {
		return fmt.Errorf("publish public key: %w", err)
	}
	return mapHTTPError(resp)
}

// FetchPublicKey retrieves another user's sharing public key.
func (c *Client) FetchPublicKey(ctx context.Context, userID string) (string, error) {
	resp, err := c.request(ctx).Get("/api/users/" + userID + "/public-key")
	if err != nil {
		return "", fmt.Errorf("fetch public key: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}
	var body struct {
		PublicKey string `json:"public_key"`
	}
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode public key: %w", err)
	}
	return body.PublicKey, nil
}

// PutShare delivers a share payload to its recipient.
func (c *Client) PutShare(ctx context.Context, rec ShareRecord) error {
	resp, err := c.request(ctx).SetBody(rec).Post("/api/shares")
	if err != nil {
		return fmt.Errorf("put share: %w", err)
	}
	return mapHTTPError(resp)
}

// NotifyLock tells the server a vault locked. Fire and forget: the caller
// already dropped the key, so a lost notification costs nothing.
func (c *Client) NotifyLock(ctx context.Context, vaultID string) {
	resp, err := c.request(ctx).Post("/api/vaults/" + vaultID + "/lock")
	if err != nil {
		c.log.Debug().Err(err).Str("vault_id", vaultID).Msg("lock notification failed")
		return
	}
	if err = mapHTTPError(resp); err != nil {
		c.log.Debug().Err(err).Str("vault_id", vaultID).Msg("lock notification rejected")
	}
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}
	return fmt.Errorf("remote: http %d: %s", code, body)
}
