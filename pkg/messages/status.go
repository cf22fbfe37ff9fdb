package messages

import (
	"fmt"
	"strings"
)

// Status is the delivery state of a message.
type Status int

const (
	Queued Status = iota
	Delivered
	Failed
)

// ParseStatus maps a wire status onto Status. Unknown values are Failed.
func ParseStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued":
		return Queued
	case "ack", "acknowledged", "delivered":
		return Delivered
	default:
		return Failed
	}
}

func (s Status) String() string {
	switch s {
	case Queued:
		return "queued"
	case Delivered:
		return "delivered"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}
