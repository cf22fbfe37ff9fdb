package messages

import (
	"time"

	"github.com/dmitrymomot/restkit/pkg/gateway"
)

type messageDTO struct {
	From        string     `json:"from"`
	To          string     `json:"to"`
	Content     string     `json:"content"`
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
}

type contactDataDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type contactsExtraDTO struct {
	Additional1 *contactDataDTO `json:"additional1"`
	Additional2 *contactDataDTO `json:"additional2"`
	Additional3 *contactDataDTO `json:"additional3"`
}

type extraDataDTO struct {
	Contacts *contactsExtraDTO `json:"contacts"`
}

type messagePageDTO struct {
	Messages        []messageDTO  `json:"messages"`
	Data            *extraDataDTO `json:"data"`
	Page            int           `json:"page"`
	QuantityPerPage int           `json:"quantityPerPage"`
}

func (p *messagePageDTO) Pagination() gateway.Pagination {
	return gateway.Pagination{Page: p.Page, PageSize: p.QuantityPerPage}
}

type receiverInput struct {
	ID string `json:"id"`
}

type messageInput struct {
	From    string        `json:"from"`
	Content string        `json:"content"`
	To      receiverInput `json:"to"`
}

func toMessage(dto *messageDTO) Message {
	m := Message{
		ID:        dto.ID,
		From:      dto.From,
		To:        dto.To,
		Content:   dto.Content,
		Status:    ParseStatus(dto.Status),
		CreatedAt: dto.CreatedAt,
	}
	if dto.DeliveredAt != nil {
		at := *dto.DeliveredAt
		m.DeliveredAt = &at
	}
	return m
}

func toContactData(dto *contactDataDTO) *ContactData {
	if dto == nil {
		return nil
	}
	return &ContactData{Name: dto.Name, Phone: dto.Phone}
}

func toPage(dto *messagePageDTO) Page {
	p := Page{Messages: make([]Message, 0, len(dto.Messages))}
	for i := range dto.Messages {
		p.Messages = append(p.Messages, toMessage(&dto.Messages[i]))
	}
	if dto.Data != nil && dto.Data.Contacts != nil {
		c := dto.Data.Contacts
		p.ContactsInfo = &ContactsInfo{
			Additional1: toContactData(c.Additional1),
			Additional2: toContactData(c.Additional2),
			Additional3: toContactData(c.Additional3),
		}
	}
	return p
}
