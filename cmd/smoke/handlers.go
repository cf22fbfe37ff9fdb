package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/restkit/pkg/apierror"
	"github.com/dmitrymomot/restkit/pkg/client"
	"github.com/dmitrymomot/restkit/pkg/httpserver"
	"github.com/dmitrymomot/restkit/pkg/inbox"
	"github.com/dmitrymomot/restkit/pkg/logger"
	"github.com/dmitrymomot/restkit/pkg/metrics"
	"github.com/dmitrymomot/restkit/pkg/requestid"
	"github.com/dmitrymomot/restkit/pkg/signature"
	"github.com/dmitrymomot/restkit/pkg/tracing"
)

type app struct {
	client   *client.Client
	verifier *signature.Verifier
	inbox    inbox.Store
	metrics  *metrics.Collector
	log      *slog.Logger
	now      func() time.Time
}

func (a *app) routes(ready ...func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(a.log))
	r.Get("/readyz", httpserver.HealthCheckHandler(a.log, ready...))
	r.Handle("/metrics", a.metrics.Handler())

	r.Route("/webhooks", func(r chi.Router) {
		r.With(a.verifyWebhook()).Post("/", a.receiveWebhook)
		r.Get("/", a.listWebhooks)
		r.Get("/{id}", a.getWebhook)
	})

	r.Route("/api/smoke-tests", func(r chi.Router) {
		r.Post("/contacts", a.smokeContacts)
		r.Post("/messages", a.smokeMessages)
	})

	return tracing.Handler(r, "smoke")
}

// verifyWebhook guards the receiver with the signature check and records
// every verdict.
func (a *app) verifyWebhook() func(http.Handler) http.Handler {
	return a.verifier.Guard(
		signature.OnVerify(func(r *http.Request, valid bool) {
			a.metrics.ObserveWebhook(valid)
			if !valid {
				a.log.WarnContext(r.Context(), "webhook rejected", logger.Event("webhook.rejected"))
			}
		}),
		signature.OnReject(func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			writeProblem(w, status, err.Error())
		}),
	)
}

// receiveWebhook stores a verified event. The body is the raw payload restored
// by the signature guard.
func (a *app) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, signature.ErrReadBody.Error())
		return
	}

	event := inbox.NewEvent(body, requestid.FromContext(r.Context()), a.now())
	if err := a.inbox.Save(r.Context(), event); err != nil {
		a.log.ErrorContext(r.Context(), "failed to store webhook", logger.Error(err))
		writeProblem(w, http.StatusInternalServerError, "failed to store webhook")
		return
	}

	a.log.InfoContext(r.Context(), "webhook accepted",
		logger.Event("webhook.accepted"),
		slog.String("event_id", event.ID.String()),
	)
	writeJSON(w, http.StatusAccepted, map[string]string{"id": event.ID.String()})
}

func (a *app) listWebhooks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := a.inbox.List(r.Context(), limit)
	if err != nil {
		a.log.ErrorContext(r.Context(), "failed to list webhooks", logger.Error(err))
		writeProblem(w, http.StatusInternalServerError, "failed to list webhooks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (a *app) getWebhook(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := a.inbox.Get(r.Context(), id)
	switch {
	case errors.Is(err, inbox.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "event not found")
	case err != nil:
		a.log.ErrorContext(r.Context(), "failed to load webhook", logger.Error(err))
		writeProblem(w, http.StatusInternalServerError, "failed to load webhook")
	default:
		writeJSON(w, http.StatusOK, event)
	}
}

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (a *app) smokeContacts(w http.ResponseWriter, r *http.Request) {
	var in contactRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := a.client.Contacts.Create(r.Context(), in.Name, in.Phone)
	if err != nil {
		a.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type messageRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Content string `json:"content"`
}

func (a *app) smokeMessages(w http.ResponseWriter, r *http.Request) {
	var in messageRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := a.client.Messages.Send(r.Context(), in.To, in.From, in.Content)
	if err != nil {
		a.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeAPIError echoes a canonical client error. Statuses outside the HTTP
// error range, such as 499, are reported as 502.
func (a *app) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.FromTransport(err)
	}
	a.log.WarnContext(r.Context(), "upstream call failed",
		logger.Kind(string(apiErr.Kind)),
		logger.Status(apiErr.Status),
		logger.Error(err),
	)

	status := apiErr.Status
	if status < 400 || status > 599 || status == apierror.StatusClientClosedRequest {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{
		"kind":       apiErr.Kind,
		"status":     apiErr.Status,
		"message":    apiErr.Message,
		"vendorCode": apiErr.VendorCode,
	})
}

func writeProblem(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
