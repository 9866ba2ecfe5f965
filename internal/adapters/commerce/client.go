package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/phenrril/storefront/internal/domain"
)

const customerTokenHeader = "X-Customer-Access-Token"

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
}

// Client talks JSON to the commerce backend. It implements domain.Catalog,
// domain.Accounts and domain.CheckoutService.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	log        zerolog.Logger
}

// New builds a client. With ClientID and TokenURL set every request carries a
// bearer token obtained through the client credentials grant.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("commerce base url %q: %w", cfg.BaseURL, domain.ErrInvalidInput)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" && cfg.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
		hc = oauth2.NewClient(ctx, cc.TokenSource(ctx))
		hc.Timeout = timeout
	}
	return &Client{
		base:       base,
		httpClient: hc,
		log:        log.With().Str("component", "commerce").Logger(),
	}, nil
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends in as JSON (when non-nil) and decodes the response into out (when
// non-nil). 404 maps to ErrNotFound and 401/403 to ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(customerTokenHeader, token)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce %s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	c.log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).
		Dur("took", time.Since(start)).Msg("commerce request")

	raw, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("commerce %s %s: read body: %w", method, path, err)
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	case res.StatusCode >= 300:
		var ae apiError
		_ = json.Unmarshal(raw, &ae)
		msg := ae.Message
		if msg == "" {
			msg = ae.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if res.StatusCode < 500 {
			return fmt.Errorf("commerce %s %s: %w: %s", method, path, domain.ErrInvalidInput, msg)
		}
		return fmt.Errorf("commerce %s %s: status %d: %s", method, path, res.StatusCode, msg)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("commerce %s %s: decode: %w", method, path, err)
	}
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
