package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/zbx-labs/zbxkit/internal/testserver"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"127.0.0.1", "http://127.0.0.1/api_jsonrpc.php"},
		{"https://localhost", "https://localhost/api_jsonrpc.php"},
		{"localhost/zabbix", "http://localhost/zabbix/api_jsonrpc.php"},
		{"localhost/", "http://localhost/api_jsonrpc.php"},
		{"127.0.0.1/api_jsonrpc.php", "http://127.0.0.1/api_jsonrpc.php"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := normalizeURL(tt.raw); got != tt.want {
				t.Errorf("normalizeURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLoginUserField(t *testing.T) {
	// The mock rejects user.login calls that use the wrong credential
	// field for its version, so a successful login is the assertion.
	for _, version := range []string{"6.0.0", "6.4.0", "7.0.0"} {
		t.Run(version, func(t *testing.T) {
			srv := testserver.NewAPI(version, "Admin", "zabbix", "")
			defer srv.Close()

			c := New(WithURL(srv.URL()), WithCredentials("Admin", "zabbix"))
			if err := c.Login(context.Background()); err != nil {
				t.Fatalf("Login() error = %v", err)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", "")
	defer srv.Close()

	c := New(WithURL(srv.URL()), WithCredentials("Admin", "wrong"))
	err := c.Login(context.Background())
	if err == nil {
		t.Fatal("Login() expected error, got nil")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login() error = %v, want *Error", err)
	}
	if !strings.Contains(apiErr.Data, "Incorrect user name or password") {
		t.Errorf("Error.Data = %q, want the incorrect-credentials detail", apiErr.Data)
	}
}

func TestCallAuthPlacement(t *testing.T) {
	hosts := func(params json.RawMessage, auth string) (any, *testserver.APIError) {
		return []map[string]string{{"hostid": "10084"}}, nil
	}

	tests := []struct {
		name       string
		version    string
		basicAuth  bool
		wantInBody bool
	}{
		{name: "body auth before 6.4", version: "6.0.0", wantInBody: true},
		{name: "bearer from 6.4", version: "6.4.0", wantInBody: false},
		{name: "bearer on 7.0", version: "7.0.0", wantInBody: false},
		{name: "basic auth forces body", version: "7.0.0", basicAuth: true, wantInBody: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testserver.NewAPI(tt.version, "Admin", "zabbix", "")
			defer srv.Close()
			srv.Handle("host.get", hosts)

			opts := []Option{WithURL(srv.URL()), WithCredentials("Admin", "zabbix")}
			if tt.basicAuth {
				opts = append(opts, WithBasicAuth("web", "s3cret"))
			}
			c := New(opts...)
			ctx := context.Background()
			if err := c.Login(ctx); err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if _, err := c.Call(ctx, "host.get", nil); err != nil {
				t.Fatalf("Call() error = %v", err)
			}

			bodyAuth, bearer := srv.LastAuth()
			if tt.wantInBody {
				if bodyAuth != testserver.Session || bearer != "" {
					t.Errorf("auth placement: body %q bearer %q, want session in body", bodyAuth, bearer)
				}
			} else {
				if bearer != testserver.Session || bodyAuth != "" {
					t.Errorf("auth placement: body %q bearer %q, want session in bearer", bodyAuth, bearer)
				}
			}
		})
	}
}

func TestLoginWithToken(t *testing.T) {
	const token = "a72b3dcf5e8f21bc9ed4a2c7ffee9d3b"

	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", token)
	defer srv.Close()
	srv.Handle("host.get", func(params json.RawMessage, auth string) (any, *testserver.APIError) {
		return []any{}, nil
	})

	c := New(WithURL(srv.URL()), WithToken(token))
	ctx := context.Background()
	if err := c.Login(ctx); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// The token becomes the session without a user.login round trip.
	calls := srv.Calls()
	if len(calls) != 1 || calls[0] != "apiinfo.version" {
		t.Fatalf("calls after token login = %v, want only apiinfo.version", calls)
	}

	if _, err := c.Call(ctx, "host.get", nil); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if bodyAuth, _ := srv.LastAuth(); bodyAuth != token {
		t.Errorf("body auth = %q, want the token", bodyAuth)
	}

	ok, err := c.CheckAuth(ctx)
	if err != nil {
		t.Fatalf("CheckAuth() error = %v", err)
	}
	if !ok {
		t.Error("CheckAuth() = false, want true for a valid token")
	}
}

func TestLoginTokenOnOldServer(t *testing.T) {
	srv := testserver.NewAPI("5.2.0", "Admin", "zabbix", "sometoken")
	defer srv.Close()

	c := New(WithURL(srv.URL()), WithToken("sometoken"))
	err := c.Login(context.Background())
	if !errors.Is(err, ErrTokenNotSupported) {
		t.Errorf("Login() error = %v, want ErrTokenNotSupported", err)
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", "")
	defer srv.Close()

	c := New(WithURL(srv.URL()))
	if err := c.Login(context.Background()); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Login() error = %v, want ErrMissingCredentials", err)
	}
}

func TestLoginVersionWindow(t *testing.T) {
	tests := []struct {
		name    string
		version string
		skip    bool
		wantErr bool
	}{
		{name: "too old", version: "4.4.0", wantErr: true},
		{name: "too new", version: "7.2.0", wantErr: true},
		{name: "oldest supported", version: "5.0.0", wantErr: false},
		{name: "newest supported line", version: "7.0.30", wantErr: false},
		{name: "too old but skipped", version: "4.4.0", skip: true, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testserver.NewAPI(tt.version, "Admin", "zabbix", "")
			defer srv.Close()

			opts := []Option{WithURL(srv.URL()), WithCredentials("Admin", "zabbix")}
			if tt.skip {
				opts = append(opts, WithSkipVersionCheck())
			}
			err := New(opts...).Login(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrVersionNotSupported) {
					t.Errorf("Login() error = %v, want ErrVersionNotSupported", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Login() error = %v", err)
			}
		})
	}
}

func TestCallNotLoggedIn(t *testing.T) {
	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", "")
	defer srv.Close()

	c := New(WithURL(srv.URL()))
	if _, err := c.Call(context.Background(), "host.get", nil); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Call() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestLogout(t *testing.T) {
	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", "")
	defer srv.Close()

	c := New(WithURL(srv.URL()), WithCredentials("Admin", "zabbix"))
	ctx := context.Background()
	if err := c.Login(ctx); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	var sawLogout bool
	for _, m := range srv.Calls() {
		if m == "user.logout" {
			sawLogout = true
		}
	}
	if !sawLogout {
		t.Error("user.logout was not called")
	}
	if _, err := c.Call(ctx, "host.get", nil); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Call() after Logout error = %v, want ErrNotLoggedIn", err)
	}
}

func TestLogoutWithToken(t *testing.T) {
	const token = "a72b3dcf5e8f21bc9ed4a2c7ffee9d3b"

	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", token)
	defer srv.Close()

	c := New(WithURL(srv.URL()), WithToken(token))
	ctx := context.Background()
	if err := c.Login(ctx); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	// Tokens are dropped locally, never revoked through the API.
	for _, m := range srv.Calls() {
		if m == "user.logout" {
			t.Fatal("user.logout was called for a token session")
		}
	}
}

func TestCheckAuth(t *testing.T) {
	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", "")
	defer srv.Close()

	c := New(WithURL(srv.URL()), WithCredentials("Admin", "zabbix"))
	ctx := context.Background()

	ok, err := c.CheckAuth(ctx)
	if err != nil {
		t.Fatalf("CheckAuth() before login error = %v", err)
	}
	if ok {
		t.Error("CheckAuth() = true before login")
	}

	if err := c.Login(ctx); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	ok, err = c.CheckAuth(ctx)
	if err != nil {
		t.Fatalf("CheckAuth() error = %v", err)
	}
	if !ok {
		t.Error("CheckAuth() = false for a live session")
	}
}

func TestAPIVersionCached(t *testing.T) {
	srv := testserver.NewAPI("6.4.0", "Admin", "zabbix", "")
	defer srv.Close()

	c := New(WithURL(srv.URL()))
	ctx := context.Background()

	ver, err := c.APIVersion(ctx)
	if err != nil {
		t.Fatalf("APIVersion() error = %v", err)
	}
	if want := (Version{Major: 6, Minor: 4, Patch: 0}); ver != want {
		t.Errorf("APIVersion() = %v, want %v", ver, want)
	}
	if _, err := c.APIVersion(ctx); err != nil {
		t.Fatalf("APIVersion() second call error = %v", err)
	}
	if calls := srv.Calls(); len(calls) != 1 {
		t.Errorf("apiinfo.version called %d times, want 1", len(calls))
	}
}

func TestNewEnvFallback(t *testing.T) {
	srv := testserver.NewAPI("6.0.0", "Admin", "zabbix", "")
	defer srv.Close()

	t.Setenv("ZABBIX_URL", srv.URL())
	t.Setenv("ZABBIX_USER", "Admin")
	t.Setenv("ZABBIX_PASSWORD", "zabbix")

	c := New()
	if want := srv.URL() + "/api_jsonrpc.php"; c.URL() != want {
		t.Errorf("URL() = %q, want %q", c.URL(), want)
	}
	if err := c.Login(context.Background()); err != nil {
		t.Errorf("Login() with environment credentials error = %v", err)
	}
}
