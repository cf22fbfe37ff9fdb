package contacts

import "github.com/dmitrymomot/restkit/pkg/gateway"

type contactDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type contactPageDTO struct {
	Contacts        []contactDTO `json:"contacts"`
	Page            int          `json:"page"`
	QuantityPerPage int          `json:"quantityPerPage"`
}

func (p *contactPageDTO) Pagination() gateway.Pagination {
	return gateway.Pagination{Page: p.Page, PageSize: p.QuantityPerPage}
}

type contactInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func toContact(dto *contactDTO) Contact {
	return Contact{ID: dto.ID, Name: dto.Name, Phone: dto.Phone}
}

func toContacts(dto *contactPageDTO) []Contact {
	out := make([]Contact, 0, len(dto.Contacts))
	for i := range dto.Contacts {
		out = append(out, toContact(&dto.Contacts[i]))
	}
	return out
}
