// Package messages is the messages resource of the remote API.
package messages

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/restkit/pkg/apierror"
	"github.com/dmitrymomot/restkit/pkg/gateway"
)

const resource = "messages"

// Message is the domain view of a sent message.
type Message struct {
	ID          string     `json:"id"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Content     string     `json:"content"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

// ContactData is a contact referenced by a message page.
type ContactData struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ContactsInfo holds the additional contacts the API attaches to a page.
type ContactsInfo struct {
	Additional1 *ContactData `json:"additional1,omitempty"`
	Additional2 *ContactData `json:"additional2,omitempty"`
	Additional3 *ContactData `json:"additional3,omitempty"`
}

// Page is one page of messages.
type Page struct {
	Messages     []Message     `json:"messages"`
	ContactsInfo *ContactsInfo `json:"contactsInfo,omitempty"`
}

// API calls the messages endpoints through a gateway.
type API struct {
	gw *gateway.Gateway
}

// New creates a messages API bound to gw.
func New(gw *gateway.Gateway) *API {
	return &API{gw: gw}
}

// Send delivers content from the sender to the contact identified by to.
// Sending is not idempotent, so it is retried only when the resilience policy
// opts non-idempotent methods in.
func (a *API) Send(ctx context.Context, to, from, content string) (*gateway.Result[Message], error) {
	if strings.TrimSpace(to) == "" {
		return nil, validation("recipient is required")
	}
	body := messageInput{From: from, Content: content, To: receiverInput{ID: to}}
	req, err := a.gw.NewRequest(ctx, http.MethodPost, resource, body)
	if err != nil {
		return nil, err
	}
	return gateway.Fetch(ctx, a.gw, req, gateway.JSON[messageDTO](a.gw.Codec()), toMessage)
}

// Get fetches one message.
func (a *API) Get(ctx context.Context, id string) (*gateway.Result[Message], error) {
	if strings.TrimSpace(id) == "" {
		return nil, validation("message id is required")
	}
	req, err := a.gw.NewRequest(ctx, http.MethodGet, resource+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return gateway.Fetch(ctx, a.gw, req, gateway.JSON[messageDTO](a.gw.Codec()), toMessage)
}

// List fetches one page of messages. A nil page requests the first page.
func (a *API) List(ctx context.Context, page *gateway.PageRequest) (*gateway.Result[Page], error) {
	req, err := a.gw.NewRequest(ctx, http.MethodGet, gateway.PagedPath(resource, page), nil)
	if err != nil {
		return nil, err
	}
	return gateway.Fetch(ctx, a.gw, req, gateway.JSON[messagePageDTO](a.gw.Codec()), toPage)
}

func validation(msg string) *apierror.Error {
	return &apierror.Error{Kind: apierror.KindValidation, Status: http.StatusBadRequest, Message: msg}
}
