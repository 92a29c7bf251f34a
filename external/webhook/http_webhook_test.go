package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/vox/internal/output"
)

func TestEmit_EmptyWebhookURL(t *testing.T) {
	sink := NewHTTPSink("")
	if err := sink.Emit(context.Background(), output.Output{Text: "hello"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := sink.PublishTranscript(context.Background(), output.Transcript{Filename: "a.txt"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestEmit_PostsJSON(t *testing.T) {
	var got output.Output
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sink := NewHTTPSink(server.URL)
	out := output.Output{
		SessionID:    "s-1",
		SegmentIndex: 2,
		Source:       "merhaba",
		Text:         "hello",
		EmittedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := sink.Emit(context.Background(), out); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.SessionID != "s-1" || got.SegmentIndex != 2 || got.Text != "hello" || got.Source != "merhaba" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if !got.EmittedAt.Equal(out.EmittedAt) {
		t.Fatalf("unexpected emitted_at: %s", got.EmittedAt)
	}
}

func TestPublishTranscript_Multipart(t *testing.T) {
	var gotSessionID, gotFilename, gotBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType := r.Header.Get("Content-Type")
		if !strings.HasPrefix(mediaType, "multipart/form-data") {
			t.Fatalf("unexpected content type: %s", mediaType)
		}

		reader, err := r.MultipartReader()
		if err != nil {
			t.Fatalf("failed to create multipart reader: %v", err)
		}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("failed to read multipart part: %v", err)
			}
			content, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("failed to read part body: %v", err)
			}
			switch part.FormName() {
			case "session_id":
				gotSessionID = string(content)
			case "file":
				gotFilename = part.FileName()
				gotBody = string(content)
			default:
				t.Fatalf("unexpected form name: %s", part.FormName())
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := NewHTTPSink(server.URL)
	err := sink.PublishTranscript(context.Background(), output.Transcript{
		SessionID: "s-1",
		Filename:  "transcript.txt",
		Body:      []byte("hello world"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotSessionID != "s-1" {
		t.Fatalf("unexpected session id: %s", gotSessionID)
	}
	if gotFilename != "transcript.txt" {
		t.Fatalf("unexpected filename: %s", gotFilename)
	}
	if gotBody != "hello world" {
		t.Fatalf("unexpected body: %s", gotBody)
	}
}

func TestEmit_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sink := NewHTTPSink(server.URL)
	if err := sink.Emit(context.Background(), output.Output{Text: "hello"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
