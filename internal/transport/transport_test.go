package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSender_PostsPayloadWithHeaders(t *testing.T) {
	var (
		gotBody    []byte
		gotDevice  string
		gotSurface string
		gotCType   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotDevice = r.Header.Get("X-Device-Address")
		gotSurface = r.Header.Get("X-Surface")
		gotCType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL)
	payload := []byte(`{"stage":"heating"}`)
	if err := s.Send(context.Background(), "dev-123", SurfaceAndroid, payload); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(gotBody) != string(payload) {
		t.Fatalf("body = %s, want %s", gotBody, payload)
	}
	if gotDevice != "dev-123" || gotSurface != "android" || gotCType != "application/json" {
		t.Fatalf("headers wrong: device=%q surface=%q ctype=%q", gotDevice, gotSurface, gotCType)
	}
}

func TestWebhookSender_Non2xxIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewWebhookSender(srv.URL)
	err := s.Send(context.Background(), "dev-123", SurfaceIOS, []byte("{}"))
	if !errors.Is(err, ErrSendRejected) {
		t.Fatalf("expected ErrSendRejected, got %v", err)
	}
}

func TestWebhookSender_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewWebhookSender(srv.URL)
	if err := s.Send(ctx, "dev-123", SurfaceWeb, []byte("{}")); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}

func TestNewFromConfig(t *testing.T) {
	if _, ok := NewFromConfig("", nil).(*LogSender); !ok {
		t.Fatalf("empty endpoint should pick the logging sender")
	}
	if _, ok := NewFromConfig("http://gateway", nil).(*WebhookSender); !ok {
		t.Fatalf("configured endpoint should pick the webhook sender")
	}
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	s := NewLogSender(nil)
	if err := s.Send(context.Background(), "dev-123", SurfaceAndroid, []byte("{}")); err != nil {
		t.Fatalf("LogSender must not fail: %v", err)
	}
}

func TestSurfacesOrder(t *testing.T) {
	want := []Surface{SurfaceAndroid, SurfaceIOS, SurfaceWeb}
	got := Surfaces()
	if len(got) != len(want) {
		t.Fatalf("surfaces = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("surfaces order = %v, want %v", got, want)
		}
	}
}
