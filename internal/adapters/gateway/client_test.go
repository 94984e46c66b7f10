package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ritahchanger/propertify-console/internal/domain"
)

func TestLoginParsesIdentityAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"email":"a@b.com","firstName":"A","lastName":"B","role":"owner"},"token":"tok-1"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 2*time.Second)
	user, token, err := client.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Email != "a@b.com" || user.Role != domain.RoleOwner {
		t.Fatalf("unexpected identity: %+v", user)
	}
	if token != "tok-1" {
		t.Fatalf("unexpected token: %q", token)
	}
}

func TestLoginErrorMessageFlatShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer srv.Close()

	_, _, err := NewHTTPClient(srv.URL, 2*time.Second).Login(context.Background(), "a@b.com", "x")
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if gerr.StatusCode != http.StatusUnauthorized || gerr.Message != "Invalid credentials" {
		t.Fatalf("unexpected error: %+v", gerr)
	}
}

func TestLoginErrorMessageNestedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"forbidden","message":"Account suspended"}}`))
	}))
	defer srv.Close()

	_, _, err := NewHTTPClient(srv.URL, 2*time.Second).Login(context.Background(), "a@b.com", "x")
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Message != "Account suspended" {
		t.Fatalf("nested message not extracted: %v", err)
	}
}

func TestLoginErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := NewHTTPClient(srv.URL, 2*time.Second).Login(context.Background(), "a@b.com", "x")
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if gerr.Message != "" {
		t.Fatalf("expected empty message for fallback handling, got %q", gerr.Message)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"user":`))
	}))
	defer srv.Close()

	_, _, err := NewHTTPClient(srv.URL, 2*time.Second).Login(context.Background(), "a@b.com", "x")
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
}

func TestLoginTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close()

	_, _, err := NewHTTPClient(srv.URL, time.Second).Login(context.Background(), "a@b.com", "x")
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Message != "" {
		t.Fatalf("transport failure should carry no server message: %v", err)
	}
	if gerr.Unwrap() == nil {
		t.Fatal("transport failure should wrap its cause")
	}
	if gerr.Error() == "gateway error: status 0" {
		t.Fatalf("error string should surface the cause, got %q", gerr.Error())
	}
}

func TestLogoutAcceptsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/logout" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewHTTPClient(srv.URL, 2*time.Second).Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
}

func TestRegisterSendsFullPayload(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = w.Write([]byte(`{"user":{"email":"t@b.com","role":"tenant"}}`))
	}))
	defer srv.Close()

	user, _, err := NewHTTPClient(srv.URL, 2*time.Second).Register(context.Background(), RegisterRequest{
		Email: "t@b.com", Password: "x", FirstName: "T", LastName: "N",
		Phone: "0700", IDNumber: "99", Role: domain.RoleTenant,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleTenant {
		t.Fatalf("unexpected identity: %+v", user)
	}
	for _, field := range []string{`"email":"t@b.com"`, `"firstName":"T"`, `"idNumber":"99"`, `"role":"tenant"`} {
		if !strings.Contains(gotBody, field) {
			t.Fatalf("payload missing %s: %s", field, gotBody)
		}
	}
}

func TestVerifyDoesNotRetryUnauthorized(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"session expired"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, 2*time.Second).Verify(context.Background())
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("definitive rejection retried %d times", calls)
	}
}

func TestVerifyRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"email":"a@b.com","role":"owner"}}`))
	}))
	defer srv.Close()

	user, err := NewHTTPClient(srv.URL, 2*time.Second).Verify(context.Background())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if user.Email != "a@b.com" || calls != 3 {
		t.Fatalf("unexpected result after %d calls: %+v", calls, user)
	}
}
