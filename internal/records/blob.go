package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"batch-release/internal/metrics"
	"batch-release/internal/models"
)

type blobRequest struct {
	BatchNumber string `json:"batchNumber"`
	Exception   bool   `json:"exception"`
	Sign        bool   `json:"sign"`
}

// RenderBlob asks the upstream to render the certificate for batchNumber.
func (c *Client) RenderBlob(ctx context.Context, batchNumber string, exception, sign bool) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.DataFetchDuration.WithLabelValues(metrics.DataSourceRenderer).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(blobRequest{BatchNumber: batchNumber, Exception: exception, Sign: sign})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/document/get_batch_certificate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceRenderer).Inc()
		return nil, fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.DataFetchErrors.WithLabelValues(metrics.DataSourceRenderer).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("render returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	doc, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered certificate: %w", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		return nil, fmt.Errorf("render returned %d bytes that are not a PDF", len(doc))
	}
	return doc, nil
}

// BatchRenderer renders one batch through the upstream.
type BatchRenderer struct {
	client      *Client
	batchNumber string
}

func (c *Client) ForBatch(batchNumber string) *BatchRenderer {
	return &BatchRenderer{client: c, batchNumber: batchNumber}
}

func (r *BatchRenderer) Render(ctx context.Context, d models.CertificateData) ([]byte, error) {
	exception := false
	if d.Exception != nil {
		exception = *d.Exception
	}
	if d.Signature != nil {
		exception = d.Signature.Exception
	}
	return r.client.RenderBlob(ctx, r.batchNumber, exception, d.Signature != nil)
}
