package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/gbanetboot/internal/testutil/testlog"
	"github.com/danmuck/gbanetboot/internal/transfer"
)

func TestStatusServerRoutes(t *testing.T) {
	testlog.Start(t)

	rec := NewRecorder()
	rec.OnProgress(transfer.Session{ID: "abc", State: transfer.StateTransferring, FileSize: 40, BytesWritten: 0})
	srv := NewStatusServer("127.0.0.1:0", rec, nil)

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status code %d body=%s", rr.Code, rr.Body.String())
	}
	var body Status
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID != "abc" || body.State != "transferring" || body.Pending != 40 {
		t.Fatalf("unexpected status body: %+v", body)
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response: %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "netboot_http_requests_total") {
		t.Fatalf("metrics missing request counter: %d", rr.Code)
	}
}

func TestStatusServerServeStopsOnCancel(t *testing.T) {
	testlog.Start(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := NewStatusServer(ln.Addr().String(), nil, []string{" ", "http://example.test"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.ServeListener(ctx, ln)
	}()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestStatusServerRequiresAddr(t *testing.T) {
	srv := NewStatusServer(" ", nil, nil)
	if err := srv.Serve(context.Background()); !errors.Is(err, ErrMissingAddr) {
		t.Fatalf("expected ErrMissingAddr, got %v", err)
	}
	if got := normalizeOrigins(nil); len(got) != 1 {
		t.Fatalf("unexpected default origins: %v", got)
	}
}
