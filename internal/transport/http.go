package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Guizzs26/go-field-sync/internal/mapper"
	"github.com/Guizzs26/go-field-sync/internal/models"
	"github.com/go-resty/resty/v2"
)

const maxErrorBody = 512

// HTTPIngestClient posts plot batches to the collector's bulk endpoints
type HTTPIngestClient struct {
	client *resty.Client
	logger *slog.Logger
}

func NewHTTPIngestClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPIngestClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPIngestClient{client: client, logger: logger}
}

// Transmit sends one batch. Any 2xx means the whole batch was accepted; every
// other outcome means none of it was
func (c *HTTPIngestClient) Transmit(ctx context.Context, b mapper.Batch) error {
	l := c.logger.With(
		"record_type", b.RecordType,
		"plot_id", b.PlotID,
		"path", b.Path,
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(b.Body()).
		Post(b.Path)
	// No response means nothing was accepted; the records stay pending either way
	if err != nil {
		l.Warn("Ingest request failed", "error", err)
		return &models.TransportError{
			RecordType: b.RecordType,
			PlotID:     b.PlotID,
			Retryable:  true,
			Err:        err,
		}
	}

	if !resp.IsSuccess() {
		status := resp.StatusCode()
		l.Warn("Ingest endpoint rejected batch", "status", status)
		return &models.TransportError{
			RecordType: b.RecordType,
			PlotID:     b.PlotID,
			StatusCode: status,
			Body:       excerpt(resp.String()),
			Retryable:  status >= http.StatusInternalServerError || status == http.StatusTooManyRequests,
			Err:        fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	l.Debug("Batch accepted", "status", resp.StatusCode(), "records", len(b.Items))
	return nil
}

func excerpt(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > maxErrorBody {
		return body[:maxErrorBody] + "..."
	}
	return body
}
