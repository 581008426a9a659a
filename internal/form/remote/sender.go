// Package remote delivers accepted submissions to the external sink.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "registration-pipeline/internal/common/errors"
	httpclient "registration-pipeline/internal/common/http"
	"registration-pipeline/internal/common/logger"
	"registration-pipeline/internal/common/metrics"
	"registration-pipeline/internal/models"
)

// Sender attempts one delivery. A nil error means the attempt counts as
// delivered for the configured mode; it is not an acknowledgment.
type Sender interface {
	Send(ctx context.Context, record models.SubmissionRecord) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, record models.SubmissionRecord) error

func (f SenderFunc) Send(ctx context.Context, record models.SubmissionRecord) error {
	return f(ctx, record)
}

type HTTPSender struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
}

func NewHTTPSender(config *Config, log logger.Logger) *HTTPSender {
	return NewHTTPSenderWithClient(config, httpclient.NewClient(config.Timeout), log)
}

func NewHTTPSenderWithClient(config *Config, client *httpclient.Client, log logger.Logger) *HTTPSender {
	if config.Mode == "" {
		config.Mode = ModeOpaque
	}
	return &HTTPSender{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{
			"component": "remote",
			"mode":      config.Mode,
		}),
	}
}

// Send POSTs the record as one flat JSON object. In opaque mode any response
// is success; in cors mode the status must be 2xx and the body readable.
func (s *HTTPSender) Send(ctx context.Context, record models.SubmissionRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewRemoteTransportError(s.config.EndpointURL, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			metrics.RemoteFailures.Inc()
		}
	}()

	start := time.Now()
	resp, err := s.client.PostJSON(ctx, s.config.EndpointURL, record.Payload())
	if err != nil {
		return apperrors.NewRemoteTransportError(s.config.EndpointURL, err)
	}
	defer resp.Body.Close()

	if s.config.Mode == ModeCORS {
		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return apperrors.NewRemoteTransportError(s.config.EndpointURL,
				fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
		if _, err := io.ReadAll(resp.Body); err != nil {
			return apperrors.NewRemoteTransportError(s.config.EndpointURL,
				fmt.Errorf("read response: %w", err))
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	s.logger.Debug("submission dispatched", map[string]interface{}{
		"recordId":   record.ID,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return nil
}
