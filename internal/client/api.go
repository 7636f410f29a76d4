// Package client implements the command-line client of the JobTracker API:
// an HTTP client, a local session file holding the bearer token, and an
// interactive shell.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/JobTracker/internal/certgen"
	"github.com/atinyakov/JobTracker/internal/models"
)

// ErrSessionExpired is returned when the server rejects the stored token.
var ErrSessionExpired = errors.New("session expired, please log in again")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Field  string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server error: %s", e.Detail)
}

// API talks to the JobTracker server.
type API struct {
	BaseURL string
	HTTP    *http.Client
	// Token is sent as a bearer token on /jobs requests.
	Token string
}

// NewAPI returns an API for baseURL. When caFile is set, HTTPS server
// certificates are verified against it.
func NewAPI(baseURL, caFile string) (*API, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if caFile != "" {
		caPEM, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool, err := certgen.CertPool(caPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse CA cert: %w", err)
		}
		transport.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}, nil
}

// Register creates an account.
func (a *API) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var user models.User
	if err := a.doJSON(ctx, http.MethodPost, "/register", body, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token and stores it in a.Token.
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := a.send(req, &resp, false); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("server returned an empty token")
	}
	a.Token = resp.AccessToken
	return resp.AccessToken, nil
}

// ListJobs returns a page of the caller's jobs.
func (a *API) ListJobs(ctx context.Context, skip, limit int) ([]models.Job, error) {
	q := url.Values{"skip": {strconv.Itoa(skip)}, "limit": {strconv.Itoa(limit)}}
	var jobs []models.Job
	if err := a.doJSON(ctx, http.MethodGet, "/jobs?"+q.Encode(), nil, &jobs, true); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns one job.
func (a *API) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	return a.jobCall(ctx, http.MethodGet, id, nil)
}

// CreateJob adds a job.
func (a *API) CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error) {
	var job models.Job
	if err := a.doJSON(ctx, http.MethodPost, "/jobs", in, &job, true); err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateJob changes the fields set in upd.
func (a *API) UpdateJob(ctx context.Context, id int64, upd models.JobUpdate) (*models.Job, error) {
	return a.jobCall(ctx, http.MethodPut, id, upd)
}

// DeleteJob removes a job and returns it.
func (a *API) DeleteJob(ctx context.Context, id int64) (*models.Job, error) {
	return a.jobCall(ctx, http.MethodDelete, id, nil)
}

func (a *API) jobCall(ctx context.Context, method string, id int64, body any) (*models.Job, error) {
	var job models.Job
	if err := a.doJSON(ctx, method, "/jobs/"+strconv.FormatInt(id, 10), body, &job, true); err != nil {
		return nil, err
	}
	return &job, nil
}

func (a *API) doJSON(ctx context.Context, method, path string, body, out any, auth bool) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, out, auth)
}

func (a *API) send(req *http.Request, out any, auth bool) error {
	if auth {
		if a.Token == "" {
			return ErrSessionExpired
		}
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && auth {
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
