package identity

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/createconomy/cemvp/internal/models"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// SupportedProviders are the OAuth providers the sign-in route accepts
var SupportedProviders = map[string]bool{
	string(types.ProviderGoogle): true,
	string(types.ProviderGitHub): true,
	string(types.ProviderAzure):  true,
	string(types.ProviderApple):  true,
}

// Client talks to a Supabase-compatible GoTrue REST API
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	auth       gotrue.Client
}

// Authorization is a prepared provider redirect and the PKCE verifier to keep for the callback
type Authorization struct {
	URL          string
	CodeVerifier string
}

// NewClient creates a new identity provider client
func NewClient(baseURL, anonKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: httpClient,
		auth: gotrue.New("", anonKey).
			WithCustomGoTrueURL(baseURL + "/auth/v1").
			WithClient(*httpClient),
	}
}

// AuthorizeURL builds the provider redirect for a PKCE authorization code flow.
// gotrue-go's Authorize has no redirect_to and performs a network round trip,
// so the URL is assembled locally.
func (c *Client) AuthorizeURL(provider, redirectTo string) (*Authorization, error) {
	provider = strings.ToLower(provider)
	if !SupportedProviders[provider] {
		return nil, fmt.Errorf("unsupported provider %q: %w", provider, models.ErrBadRequest)
	}

	verifier, err := secureRandomString(48)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}

	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", pkceChallenge(verifier))
	q.Set("code_challenge_method", "s256")

	return &Authorization{
		URL:          c.baseURL + "/auth/v1/authorize?" + q.Encode(),
		CodeVerifier: verifier,
	}, nil
}

// ExchangeCodeForSession trades an authorization code and its PKCE verifier for a session.
// The request body is built here because GoTrue reads the code from "auth_code",
// which gotrue-go's TokenRequest encodes as "code".
func (c *Client) ExchangeCodeForSession(ctx context.Context, code, verifier string) (*models.Session, error) {
	if code == "" || verifier == "" {
		return nil, fmt.Errorf("exchange code: missing code or verifier: %w", models.ErrBadRequest)
	}

	body, err := json.Marshal(map[string]string{
		"auth_code":     code,
		"code_verifier": verifier,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=pkce", body)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange code: %w", statusError(resp))
	}

	var tr types.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("exchange code: decode response: %w", err)
	}
	if tr.AccessToken == "" || tr.User.ID == uuid.Nil {
		return nil, fmt.Errorf("exchange code: incomplete session in response")
	}

	return toSession(tr.Session), nil
}

func toSession(s types.Session) *models.Session {
	return &models.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User: &models.Identity{
			ID:           s.User.ID.String(),
			Email:        s.User.Email,
			Phone:        s.User.Phone,
			AppMetadata:  s.User.AppMetadata,
			UserMetadata: s.User.UserMetadata,
		},
	}
}

// SignOut revokes the session behind accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	if err := c.auth.WithToken(accessToken).Logout(); err != nil {
		// 401 means the session is already gone
		if strings.Contains(err.Error(), "status code 401") {
			return nil
		}
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// statusError summarises a non-success response without echoing large bodies
func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}

func secureRandomString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func pkceChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
