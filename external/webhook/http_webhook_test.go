package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/chattyarchive/internal/webhook"
)

func TestSendImportReport_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendImportReport(context.Background(), webhook.ImportReportPayload{ImportID: "run-1"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendImportReport_Success(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendImportReport(context.Background(), webhook.ImportReportPayload{
		SchemaVersion: webhook.ImportReportSchemaVersion,
		ImportID:      "run-1",
		Status:        "completed",
		MessageCount:  3,
		Channels:      []string{"#test"},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got["import_id"] != "run-1" || got["status"] != "completed" || got["message_count"] != float64(3) {
		t.Fatalf("unexpected payload: %v", got)
	}
	if _, ok := got["error"]; ok {
		t.Fatalf("empty error should be omitted: %v", got)
	}
}

func TestSendImportReport_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown schema_version"}`))
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	err := sender.SendImportReport(context.Background(), webhook.ImportReportPayload{ImportID: "run-1"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	for _, want := range []string{"run-1", "status 400", "unknown schema_version"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("%q not found in error: %v", want, err)
		}
	}
}

func TestSendImportReport_Non2xxTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4*maxErrorBodyBytes)))
	}))
	defer server.Close()

	err := NewHTTPSender(server.URL).SendImportReport(context.Background(), webhook.ImportReportPayload{ImportID: "run-1"})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.HasSuffix(err.Error(), strings.Repeat("x", maxErrorBodyBytes)+"...") {
		t.Fatalf("body should be cut at %d bytes: %v", maxErrorBodyBytes, err)
	}
	if strings.Count(err.Error(), "x") != maxErrorBodyBytes {
		t.Fatalf("unexpected body length in error: %d", strings.Count(err.Error(), "x"))
	}
}

func TestSendImportReport_Non2xxEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewHTTPSender(server.URL).SendImportReport(context.Background(), webhook.ImportReportPayload{ImportID: "run-1"})
	if err == nil || !strings.Contains(err.Error(), "(empty body)") {
		t.Fatalf("expected empty body marker, got %v", err)
	}
}
