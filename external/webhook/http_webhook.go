package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/webhook"
)

const (
	webhookTimeout = 10 * time.Second
	// Only the start of a rejected response is kept in the error.
	maxErrorBodyBytes = 512
)

type HTTPSender struct {
	webhookURL string
	client     *http.Client
}

func NewHTTPSender(webhookURL string) webhook.Sender {
	return &HTTPSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: webhookTimeout},
	}
}

func (s *HTTPSender) SendImportReport(ctx context.Context, payload webhook.ImportReportPayload) error {
	if s.webhookURL == "" {
		return nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return fmt.Errorf("import report %s rejected by webhook: status %d: %s", payload.ImportID, resp.StatusCode, readErrorBody(resp.Body))
	}
	return nil
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes+1))
	if err != nil {
		return fmt.Sprintf("(unreadable body: %v)", err)
	}
	body := strings.TrimSpace(string(b))
	if len(b) > maxErrorBodyBytes {
		body = strings.TrimSpace(string(b[:maxErrorBodyBytes])) + "..."
	}
	if body == "" {
		return "(empty body)"
	}
	return body
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
