// Package fbr talks to the FBR digital invoicing gateway.
package fbr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	retry "github.com/avast/retry-go/v5"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/invoicing"
	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/domain/tenant"
	"github.com/invoicehub/backend/internal/infrastructure/config"
)

// transientError marks a failure worth retrying: transport errors and
// gateway-side 5xx responses. Definitive 4xx answers pass through untouched.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Client submits invoices to the FBR gateway over HTTPS. It implements
// invoicing.Submitter.
type Client struct {
	httpClient *http.Client
	cfg        *config.FBRConfig
	logger     *zap.Logger
}

// NewClient creates an FBR gateway client
func NewClient(cfg *config.FBRConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Submit posts the normalized invoice document to the environment's endpoint
// with the tenant's bearer token. It returns whatever the gateway answered,
// including error statuses; only transport-level failure is an error.
func (c *Client) Submit(ctx context.Context, payload invoicing.SubmissionPayload, environment string, credential string) (*invoicing.SubmissionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission payload: %w", err)
	}

	endpoint := c.cfg.SandboxURL
	if environment == string(tenant.EnvironmentProduction) {
		endpoint = c.cfg.ProductionURL
	}

	var result *invoicing.SubmissionResult
	retrier := c.retrier()

	err = retrier.Do(func() error {
		res, err := c.post(ctx, endpoint, credential, body)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		c.logger.Error("invoice submission failed",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, &shared.SubmissionError{Detail: err.Error()}
	}

	c.logger.Info("invoice submitted",
		zap.String("endpoint", endpoint),
		zap.Int("status", result.StatusCode))
	return result, nil
}

func (c *Client) post(ctx context.Context, endpoint, credential string, body []byte) (*invoicing.SubmissionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transientError{err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transientError{err: err}
	}
	if resp.StatusCode >= 500 {
		return nil, &transientError{err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode, respBody)}
	}

	return &invoicing.SubmissionResult{StatusCode: resp.StatusCode, Body: respBody}, nil
}

func (c *Client) retrier() *retry.Retrier {
	return retry.New(
		retry.RetryIf(func(err error) bool {
			var te *transientError
			return errors.As(err, &te)
		}),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Attempts(c.cfg.RetryAttempts),
		retry.LastErrorOnly(true),
	)
}
