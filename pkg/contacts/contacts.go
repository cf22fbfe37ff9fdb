// Package contacts is the contacts resource of the remote API.
package contacts

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/restkit/pkg/apierror"
	"github.com/dmitrymomot/restkit/pkg/gateway"
)

const resource = "contacts"

// Contact is the domain view of a remote contact.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// API calls the contacts endpoints through a gateway.
type API struct {
	gw *gateway.Gateway
}

// New creates a contacts API bound to gw.
func New(gw *gateway.Gateway) *API {
	return &API{gw: gw}
}

// Get fetches one contact.
func (a *API) Get(ctx context.Context, id string) (*gateway.Result[Contact], error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, err
	}
	req, err := a.gw.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return gateway.Fetch(ctx, a.gw, req, gateway.JSON[contactDTO](a.gw.Codec()), toContact)
}

// List fetches one page of contacts. A nil page requests the first page.
func (a *API) List(ctx context.Context, page *gateway.PageRequest) (*gateway.Result[[]Contact], error) {
	req, err := a.gw.NewRequest(ctx, http.MethodGet, gateway.PagedPath(resource, page), nil)
	if err != nil {
		return nil, err
	}
	return gateway.Fetch(ctx, a.gw, req, gateway.JSON[contactPageDTO](a.gw.Codec()), toContacts)
}

// Create registers a contact. phone is expected in E.164 format.
func (a *API) Create(ctx context.Context, name, phone string) (*gateway.Result[Contact], error) {
	req, err := a.gw.NewRequest(ctx, http.MethodPost, resource, contactInput{Name: name, Phone: phone})
	if err != nil {
		return nil, err
	}
	return gateway.Fetch(ctx, a.gw, req, gateway.JSON[contactDTO](a.gw.Codec()), toContact)
}

// Update replaces the name and phone of a contact.
func (a *API) Update(ctx context.Context, id, name, phone string) (*gateway.Result[Contact], error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, err
	}
	req, err := a.gw.NewRequest(ctx, http.MethodPatch, path, contactInput{Name: name, Phone: phone})
	if err != nil {
		return nil, err
	}
	return gateway.Fetch(ctx, a.gw, req, gateway.JSON[contactDTO](a.gw.Codec()), toContact)
}

// Delete removes a contact.
func (a *API) Delete(ctx context.Context, id string) (*gateway.Response, error) {
	path, err := itemPath(id)
	if err != nil {
		return nil, err
	}
	req, err := a.gw.NewRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return nil, err
	}
	return a.gw.Send(ctx, req)
}

func itemPath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", &apierror.Error{
			Kind:    apierror.KindValidation,
			Status:  http.StatusBadRequest,
			Message: "contact id is required",
		}
	}
	return resource + "/" + url.PathEscape(id), nil
}
