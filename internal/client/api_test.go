package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atinyakov/JobTracker/internal/certgen"
	"github.com/atinyakov/JobTracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mux *http.ServeMux) *API {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	api, err := NewAPI(srv.URL+"/", "")
	require.NoError(t, err)
	return api
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAPI_Register(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "taken" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Username already registered", "code": "duplicate_key", "field": "username"})
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, models.User{ID: 1, Username: body["username"], Email: body["email"]})
	})
	api := newTestServer(t, mux)

	user, err := api.Register(context.Background(), "alice", "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)

	_, err = api.Register(context.Background(), "taken", "t@x.com", "pw123")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "duplicate_key", apiErr.Code)
	assert.Equal(t, "username", apiErr.Field)
	assert.Contains(t, err.Error(), "Username already registered")
}

func TestAPI_Login(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "pw123" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password", "code": "invalid_credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok-" + r.PostForm.Get("username"), "token_type": "bearer"})
	})
	api := newTestServer(t, mux)

	tok, err := api.Login(context.Background(), "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "tok-alice", tok)
	assert.Equal(t, "tok-alice", api.Token)

	_, err = api.Login(context.Background(), "alice", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.False(t, errors.Is(err, ErrSessionExpired), "bad login must not read as an expired session")
}

func TestAPI_Jobs(t *testing.T) {
	link := "https://acme.example"
	mux := http.NewServeMux()
	auth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
				return
			}
			next(w, r)
		}
	}
	mux.HandleFunc("GET /jobs", auth(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("skip"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, []models.Job{{ID: 3, Title: "SWE", Company: "Acme", Status: "new"}})
	}))
	mux.HandleFunc("POST /jobs", auth(func(w http.ResponseWriter, r *http.Request) {
		var in models.JobInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusOK, models.Job{ID: 4, Title: in.Title, Company: in.Company, Link: in.Link, Status: "new"})
	}))
	mux.HandleFunc("GET /jobs/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "4" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Job not found", "code": "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, models.Job{ID: 4, Title: "SWE", Company: "Acme", Status: "new"})
	}))
	mux.HandleFunc("PUT /jobs/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{"status": "offer"}, raw, "only the set fields are sent")
		writeJSON(w, http.StatusOK, models.Job{ID: 4, Title: "SWE", Company: "Acme", Status: "offer"})
	}))
	mux.HandleFunc("DELETE /jobs/{id}", auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Job{ID: 4, Title: "SWE", Company: "Acme", Status: "offer"})
	}))

	api := newTestServer(t, mux)
	ctx := context.Background()

	_, err := api.ListJobs(ctx, 0, 10)
	assert.ErrorIs(t, err, ErrSessionExpired, "no token means no request")

	api.Token = "tok"
	jobs, err := api.ListJobs(ctx, 2, 5)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, int64(3), jobs[0].ID)

	created, err := api.CreateJob(ctx, models.JobInput{Title: "SWE", Company: "Acme", Link: &link})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
	require.NotNil(t, created.Link)
	assert.Equal(t, link, *created.Link)

	got, err := api.GetJob(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "SWE", got.Title)

	_, err = api.GetJob(ctx, 5)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	updated, err := api.UpdateJob(ctx, 4, jobStatus("offer"))
	require.NoError(t, err)
	assert.Equal(t, "offer", updated.Status)

	deleted, err := api.DeleteJob(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted.ID)

	api.Token = "stale"
	_, err = api.GetJob(ctx, 4)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestNewAPI_CAFile(t *testing.T) {
	ca, err := certgen.GenerateCA("Test CA", time.Now())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(path, ca.Cert, 0o644))

	api, err := NewAPI("https://localhost:8443", path)
	require.NoError(t, err)
	transport, ok := api.HTTP.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.TLSClientConfig)
	assert.NotNil(t, transport.TLSClientConfig.RootCAs)

	_, err = NewAPI("https://localhost:8443", filepath.Join(t.TempDir(), "missing.crt"))
	assert.Error(t, err)
}
