package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"consultabot/internal/cache"
	"consultabot/internal/lookup"
)

func testServer(t *testing.T, upstream string) *Server {
	t.Helper()
	registry, err := lookup.NewRegistry([]lookup.Source{
		{Key: "s1", Label: "S1", Kind: lookup.KindCPF, URL: upstream + "?cpf={query}"},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	fetcher := lookup.NewFetcher(time.Second, 0, []time.Duration{time.Millisecond})
	svc := lookup.NewService(registry, fetcher, cache.NewMemory(8), time.Minute, nil)
	return New(svc, nil)
}

func TestHealthz(t *testing.T) {
	e := testServer(t, "https://unused.example").Echo()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestLookupEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nome":"JOAO","status":"OK"}`))
	}))
	defer upstream.Close()

	e := testServer(t, upstream.URL).Echo()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lookup/s1?q=12345678901", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"nome":"JOAO"`) {
		t.Fatalf("cleaned data missing: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"status"`) {
		t.Fatalf("noise field leaked: %s", rec.Body.String())
	}
}

func TestLookupEndpoint_RequiresQuery(t *testing.T) {
	e := testServer(t, "https://unused.example").Echo()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lookup/s1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLookupEndpoint_UpstreamFailureIsBadGateway(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	e := testServer(t, upstream.URL).Echo()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lookup/s1?q=123", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBearerAuth(t *testing.T) {
	s := testServer(t, "https://unused.example")
	s.APIToken = "secret"
	e := s.Echo()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestListSources(t *testing.T) {
	e := testServer(t, "https://unused.example").Echo()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(out) != 1 || out[0]["key"] != "s1" {
		t.Fatalf("unexpected sources: %v", out)
	}
}

func TestWebhook_FeedsUpdateChannel(t *testing.T) {
	s := testServer(t, "https://unused.example")
	ch := make(chan tgbotapi.Update, 1)
	s.Updates = ch
	s.WebhookToken = "bot-token"
	e := s.Echo()

	body := strings.NewReader(`{"update_id":7}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook/bot-token", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	select {
	case u := <-ch:
		if u.UpdateID != 7 {
			t.Fatalf("unexpected update %+v", u)
		}
	default:
		t.Fatal("update not forwarded to the bot loop")
	}
}

func TestWebhook_RejectsWrongToken(t *testing.T) {
	s := testServer(t, "https://unused.example")
	ch := make(chan tgbotapi.Update, 1)
	s.Updates = ch
	s.WebhookToken = "bot-token"
	e := s.Echo()

	req := httptest.NewRequest(http.MethodPost, "/webhook/wrong", strings.NewReader(`{"update_id":7}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
