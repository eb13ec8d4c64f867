package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLog_RecordsStatusAndPath(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := AccessLog(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))

	req := httptest.NewRequest(http.MethodGet, "/probe/ping?count=0", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("want one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusBadRequest) {
		t.Fatalf("status field wrong: %v", fields["status"])
	}
	if fields["path"] != "/probe/ping" || fields["query"] != "count=0" || fields["remote"] != "10.1.2.3" {
		t.Fatalf("request fields wrong: %v", fields)
	}
}
