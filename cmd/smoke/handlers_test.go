package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restkit/pkg/client"
	"github.com/dmitrymomot/restkit/pkg/inbox"
	"github.com/dmitrymomot/restkit/pkg/logger"
	"github.com/dmitrymomot/restkit/pkg/metrics"
	"github.com/dmitrymomot/restkit/pkg/signature"
)

// upstream fakes the remote contacts and messages API.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/contacts":
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in["phone"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"code":"PHONE_REQUIRED","message":"phone is required"}`)
				return
			}
			_, _ = io.WriteString(w, `{"id":"c-1","name":"`+in["name"]+`","phone":"`+in["phone"]+`"}`)
		case "/messages":
			_, _ = io.WriteString(w, `{"id":"m-1","from":"c-1","to":"c-2","content":"hi","status":"queued","createdAt":"2024-05-01T10:00:00Z"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) (*app, http.Handler) {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.BaseURL = upstream(t).URL
	c, err := client.New(cfg)
	require.NoError(t, err)

	a := &app{
		client:   c,
		verifier: signature.New(signature.Config{Secret: signature.DefaultSecret, MaxBodySize: 64}),
		inbox:    inbox.NewMemory(),
		metrics:  metrics.New("smoke_test"),
		log:      logger.Discard(),
		now:      func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) },
	}
	return a, a.routes()
}

func serve(h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	t.Parallel()

	a, h := newTestApp(t)
	body := `{"event":"message.delivered","id":"m-1"}`

	t.Run("accepted", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/webhooks", body, http.Header{
			"Authorization": {"Signature " + signature.Sign(signature.DefaultSecret, []byte(body))},
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		var out map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

		got := serve(h, http.MethodGet, "/webhooks/"+out["id"], "", nil)
		require.Equal(t, http.StatusOK, got.Code)
		var event inbox.Event
		require.NoError(t, json.Unmarshal(got.Body.Bytes(), &event))
		assert.Equal(t, body, string(event.Body))
		assert.Equal(t, rec.Header().Get("X-Request-ID"), event.RequestID)
	})

	t.Run("known vector", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/webhooks", "hello", http.Header{
			"Authorization": {"Signature 7155DA4425DFA360FDF653DF6A13ADA9B7E804AB2A5892EA36AB84BFF7FEDAEE"},
		})
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("rejected", func(t *testing.T) {
		rec := serve(h, http.MethodPost, "/webhooks", body, http.Header{
			"Authorization": {"Signature " + signature.Sign("other", []byte(body))},
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var problem map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, signature.ErrInvalidSignature.Error(), problem["error"])

		rec = serve(h, http.MethodPost, "/webhooks", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("too large", func(t *testing.T) {
		big := strings.Repeat("x", 65)
		rec := serve(h, http.MethodPost, "/webhooks", big, http.Header{
			"Authorization": {"Signature " + signature.Sign(signature.DefaultSecret, []byte(big))},
		})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("list and lookup", func(t *testing.T) {
		rec := serve(h, http.MethodGet, "/webhooks?limit=10", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var out struct {
			Events []inbox.Event `json:"events"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.Len(t, out.Events, 2)
		assert.Equal(t, "hello", string(out.Events[0].Body))

		assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/webhooks/nope", "", nil).Code)
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/webhooks/00000000-0000-0000-0000-000000000001", "", nil).Code)
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(a.metrics.WebhooksTotal.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.metrics.WebhooksTotal.WithLabelValues("rejected")))
}

func TestSmokeContacts(t *testing.T) {
	t.Parallel()

	_, h := newTestApp(t)

	rec := serve(h, http.MethodPost, "/api/smoke-tests/contacts", `{"name":"Ada","phone":"+447700900001"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
		Meta struct {
			Timestamp string `json:"timestampUtc"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "c-1", out.Data.ID)
	assert.Equal(t, "Ada", out.Data.Name)
	assert.NotEmpty(t, out.Meta.Timestamp)

	rec = serve(h, http.MethodPost, "/api/smoke-tests/contacts", `{"name":"Ada"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "validation", problem["kind"])
	assert.Equal(t, "PHONE_REQUIRED", problem["vendorCode"])

	rec = serve(h, http.MethodPost, "/api/smoke-tests/contacts", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSmokeMessages(t *testing.T) {
	t.Parallel()

	_, h := newTestApp(t)

	payload, err := json.Marshal(messageRequest{To: "c-2", From: "c-1", Content: "hi"})
	require.NoError(t, err)
	rec := serve(h, http.MethodPost, "/api/smoke-tests/messages", string(payload), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"queued"`)

	rec = serve(h, http.MethodPost, "/api/smoke-tests/messages", `{"to":"","content":"hi"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProbesAndMetrics(t *testing.T) {
	t.Parallel()

	_, h := newTestApp(t)

	assert.Equal(t, "ALIVE", serve(h, http.MethodGet, "/healthz", "", nil).Body.String())
	assert.Equal(t, "READY", serve(h, http.MethodGet, "/readyz", "", nil).Body.String())

	serve(h, http.MethodPost, "/webhooks", "x", nil)
	rec := serve(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("smoke_test_webhook_verifications_total")))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RESTKIT_BASE_URL", "https://api.example.com/")
	t.Setenv("RESTKIT_HTTP_ADDR", ":9090")
	t.Setenv("RESTKIT_WEBHOOK_SECRET", "s3cret")
	t.Setenv("RESTKIT_PG_MAX_OPEN_CONNS", "4")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/", cfg.Client.BaseURL)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "s3cret", cfg.Webhook.Secret)
	assert.Equal(t, "Signature", cfg.Webhook.Scheme)
	assert.Equal(t, int32(4), cfg.Postgres.MaxOpenConns)
	assert.Equal(t, "restkit-smoke", cfg.ServiceName)
}
