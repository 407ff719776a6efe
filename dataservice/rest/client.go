// Package rest implements the data service boundary against the hosted
// backend's row-level HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "fee-portal/errors"
	"fee-portal/models"
	"fee-portal/utils"
)

// Client is a typed HTTP client for the hosted data service. It is
// explicitly constructed and injected; nothing in the portal reaches for a
// process-wide instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client for the service at baseURL authenticating
// with apiKey.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// doRequest performs one round trip. token overrides the api key as the
// bearer credential when set (user-scoped auth calls).
func (c *Client) doRequest(ctx context.Context, method, endpoint, token string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errs.E(errs.Internal, "failed to marshal request body", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, errs.E(errs.Internal, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	bearer := c.apiKey
	if token != "" {
		bearer = token
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", bearer))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.E(errs.Service, "data service request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.E(errs.Service, "failed to read data service response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, errs.E(errs.Unauthorized, "data service rejected credentials")
	}
	if resp.StatusCode >= 400 {
		return nil, errs.E(errs.Service, fmt.Sprintf("data service error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	return respBody, nil
}

// ListStudents fetches all students ordered by name.
func (c *Client) ListStudents(ctx context.Context) ([]models.Student, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/rest/v1/students?order=name.asc", "", nil)
	if err != nil {
		return nil, err
	}

	var students []models.Student
	if err := json.Unmarshal(resp, &students); err != nil {
		return nil, errs.E(errs.Service, "failed to unmarshal students", err)
	}
	return students, nil
}

// CreateStudent inserts a new student row.
func (c *Client) CreateStudent(ctx context.Context, in models.NewStudent) (*models.Student, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/rest/v1/students", "", in)
	if err != nil {
		return nil, err
	}

	var student models.Student
	if err := json.Unmarshal(resp, &student); err != nil {
		return nil, errs.E(errs.Service, "failed to unmarshal created student", err)
	}
	return &student, nil
}

// UpdateStudent applies a partial update to a student row.
func (c *Client) UpdateStudent(ctx context.Context, id string, in models.StudentUpdate) (*models.Student, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/rest/v1/students/%s", id), "", in)
	if err != nil {
		return nil, err
	}

	var student models.Student
	if err := json.Unmarshal(resp, &student); err != nil {
		return nil, errs.E(errs.Service, "failed to unmarshal updated student", err)
	}
	return &student, nil
}

// CreatePayment appends a payment row.
func (c *Client) CreatePayment(ctx context.Context, in models.NewPayment) (*models.Payment, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/rest/v1/payments", "", in)
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	if err := json.Unmarshal(resp, &payment); err != nil {
		return nil, errs.E(errs.Service, "failed to unmarshal created payment", err)
	}
	return &payment, nil
}

// MarkPaymentUnconfirmed flags a payment for reconciliation.
func (c *Client) MarkPaymentUnconfirmed(ctx context.Context, paymentID string) error {
	body := map[string]string{"status": utils.PaymentUnconfirmed}
	_, err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/rest/v1/payments/%s", paymentID), "", body)
	return err
}

// SignIn exchanges credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/v1/sign-in", "", body)
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(resp, &session); err != nil {
		return nil, errs.E(errs.Service, "failed to unmarshal session", err)
	}
	return &session, nil
}

// SignOut invalidates a session token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/auth/v1/sign-out", token, nil)
	return err
}

// Account resolves the account behind a session token.
func (c *Client) Account(ctx context.Context, token string) (*models.Account, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/v1/account", token, nil)
	if err != nil {
		return nil, err
	}

	var account models.Account
	if err := json.Unmarshal(resp, &account); err != nil {
		return nil, errs.E(errs.Service, "failed to unmarshal account", err)
	}
	return &account, nil
}
