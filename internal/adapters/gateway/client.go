package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Ritahchanger/propertify-console/internal/domain"
)

// Error is a failed gateway call: a transport failure, a non-2xx status, or
// an unreadable body. Message holds the server-provided message when one was
// present and stays empty otherwise; local causes live in cause so they show
// up in logs without masquerading as a server message.
type Error struct {
	StatusCode int
	Message    string

	cause error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("gateway error: %v", e.cause)
	}
	return fmt.Sprintf("gateway error: status %d", e.StatusCode)
}

func (e *Error) Unwrap() error { return e.cause }

type RegisterRequest struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Phone     string      `json:"phone,omitempty"`
	IDNumber  string      `json:"idNumber,omitempty"`
	Role      domain.Role `json:"role"`
	Status    string      `json:"status,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client is the remote auth gateway. Register and Login return the identity
// plus the session token when the gateway issues one ("" otherwise). The
// gateway also sets session cookies; the HTTP implementation keeps them in
// its jar for the lifetime of the process.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.UserIdentity, string, error)
	Login(ctx context.Context, email, password string) (*domain.UserIdentity, string, error)
	Logout(ctx context.Context) error
	Verify(ctx context.Context) (*domain.UserIdentity, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) Client {
	jar, _ := cookiejar.New(nil)
	return &httpClient{baseURL: baseURL, client: &http.Client{Timeout: timeout, Jar: jar}}
}

func (c *httpClient) Register(ctx context.Context, req RegisterRequest) (*domain.UserIdentity, string, error) {
	return c.authCall(ctx, "/auth/register", req)
}

func (c *httpClient) Login(ctx context.Context, email, password string) (*domain.UserIdentity, string, error) {
	return c.authCall(ctx, "/auth/login", loginRequest{Email: email, Password: password})
}

func (c *httpClient) Logout(ctx context.Context) error {
	res, err := c.post(ctx, "/auth/logout", struct{}{})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return errorFromResponse(res)
	}
	return nil
}

// Verify asks the gateway whether the current cookie/token still maps to a
// live session. Transport failures are retried briefly; an explicit 401/403
// is a definitive answer and is not.
func (c *httpClient) Verify(ctx context.Context) (*domain.UserIdentity, error) {
	var user *domain.UserIdentity
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		res, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			return backoff.Permanent(errorFromResponse(res))
		}
		if res.StatusCode >= 400 {
			return errorFromResponse(res)
		}
		u, _, err := decodeAuthBody(res.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		user = u
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 5 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *httpClient) authCall(ctx context.Context, path string, payload interface{}) (*domain.UserIdentity, string, error) {
	res, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, "", errorFromResponse(res)
	}
	return decodeAuthBody(res.Body)
}

func (c *httpClient) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{cause: err}
	}
	return res, nil
}

func decodeAuthBody(r io.Reader) (*domain.UserIdentity, string, error) {
	var body struct {
		User  *domain.UserIdentity `json:"user"`
		Token string               `json:"token"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, "", &Error{cause: err}
	}
	if body.User == nil || body.User.Email == "" {
		return nil, "", &Error{cause: errors.New("auth response carried no identity")}
	}
	return body.User, body.Token, nil
}

// errorFromResponse pulls the server message out of either {"message": ...}
// or {"error": {"message": ...}}.
func errorFromResponse(res *http.Response) *Error {
	gerr := &Error{StatusCode: res.StatusCode}
	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err != nil {
		return gerr
	}
	var body struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return gerr
	}
	if body.Message != "" {
		gerr.Message = body.Message
	} else if body.Error.Message != "" {
		gerr.Message = body.Error.Message
	}
	return gerr
}
