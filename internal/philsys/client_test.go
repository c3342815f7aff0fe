package philsys

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/internal/credential"
	"idverify/internal/philsys/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, verifyURL, apiURL, staticCookie string) (*Client, *session.Memory) {
	t.Helper()
	cache := session.NewMemory(clock.NewMock(), 5*time.Minute)
	client := NewClient(Options{
		VerifyURL:    verifyURL,
		APIURL:       apiURL,
		StaticCookie: staticCookie,
		Cache:        cache,
	}, discardLogger())
	return client, cache
}

func TestVerifyOnlineBootstrapsCookie(t *testing.T) {
	var bootstraps, verifies int
	var gotCookie string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /portal", func(w http.ResponseWriter, r *http.Request) {
		bootstraps++
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/", HttpOnly: true})
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "xyz"})
	})
	mux.HandleFunc("POST /api/verify", func(w http.ResponseWriter, r *http.Request) {
		verifies++
		gotCookie = r.Header.Get("Cookie")

		var cred credential.Credential
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cred))
		assert.Equal(t, "1234567890123456", cred.Subject.PCN)
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL+"/portal", srv.URL+"/api/verify", "")

	cred := &credential.Credential{Subject: credential.Subject{PCN: "1234567890123456"}}
	code, err := client.VerifyOnline(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, bootstraps)
	assert.Equal(t, 1, verifies)
	// Attributes are stripped and the pairs joined.
	assert.Equal(t, "session=abc; token=xyz", gotCookie)
}

func TestVerifyOnlineReusesCachedCookie(t *testing.T) {
	var bootstraps int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /portal", func(w http.ResponseWriter, r *http.Request) {
		bootstraps++
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
	})
	mux.HandleFunc("POST /api/verify", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL+"/portal", srv.URL+"/api/verify", "")

	cred := &credential.Credential{}
	_, err := client.VerifyOnline(context.Background(), cred)
	require.NoError(t, err)
	_, err = client.VerifyOnline(context.Background(), cred)
	require.NoError(t, err)

	assert.Equal(t, 1, bootstraps)
}

func TestVerifyOnlineStaticCookieSkipsBootstrap(t *testing.T) {
	var gotCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /portal", func(w http.ResponseWriter, r *http.Request) {
		t.Error("bootstrap must not run with a static cookie configured")
	})
	mux.HandleFunc("POST /api/verify", func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL+"/portal", srv.URL+"/api/verify", "operator=cookie")

	_, err := client.VerifyOnline(context.Background(), &credential.Credential{})
	require.NoError(t, err)
	assert.Equal(t, "operator=cookie", gotCookie)
}

func TestVerifyOnlineRecapturesRotatedCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /portal", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "first"})
	})
	mux.HandleFunc("POST /api/verify", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "rotated"})
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, cache := newTestClient(t, srv.URL+"/portal", srv.URL+"/api/verify", "")

	_, err := client.VerifyOnline(context.Background(), &credential.Credential{})
	require.NoError(t, err)

	value, ok := cache.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "session=rotated", value)
}

func TestVerifyOnlineCookielessWhenBootstrapFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /portal", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("POST /api/verify", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Cookie"))
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL+"/portal", srv.URL+"/api/verify", "")

	code, err := client.VerifyOnline(context.Background(), &credential.Credential{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestVerifyOnlineTransportFailure(t *testing.T) {
	client, _ := newTestClient(t, "http://127.0.0.1:1/portal", "http://127.0.0.1:1/api/verify", "static=1")

	code, err := client.VerifyOnline(context.Background(), &credential.Credential{})
	assert.Error(t, err)
	assert.Zero(t, code)
}
