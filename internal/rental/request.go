package rental

import (
	"encoding/json"
	"time"

	"bitbucket.org/crgw/rental-gateway/internal/tools/jsoncodec"
)

// DateLayout renders ISO-8601 UTC timestamps with millisecond precision.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// RentalRequest is the submitted form. Values are kept as raw JSON so they
// reach the queue exactly as sent; absent fields stay absent.
type RentalRequest struct {
	Name           json.RawMessage `json:"name,omitempty" validate:"required,jsonstring"`
	Email          json.RawMessage `json:"email,omitempty" validate:"required,jsonemail"`
	Model          json.RawMessage `json:"model,omitempty" validate:"omitempty,jsonscalar"`
	Year           json.RawMessage `json:"year,omitempty" validate:"omitempty,jsonscalar"`
	RentalDuration json.RawMessage `json:"rentalDuration,omitempty" validate:"omitempty,jsonscalar"`
}

// QueueMessage is the body put on the queue.
type QueueMessage struct {
	Name           json.RawMessage `json:"name,omitempty"`
	Email          json.RawMessage `json:"email,omitempty"`
	Model          json.RawMessage `json:"model,omitempty"`
	Year           json.RawMessage `json:"year,omitempty"`
	RentalDuration json.RawMessage `json:"rentalDuration,omitempty"`
	Date           string          `json:"date"`
}

func NewQueueMessage(request RentalRequest, now time.Time) QueueMessage {
	return QueueMessage{
		Name:           request.Name,
		Email:          request.Email,
		Model:          request.Model,
		Year:           request.Year,
		RentalDuration: request.RentalDuration,
		Date:           now.UTC().Format(DateLayout),
	}
}

// String encodes s as a raw JSON string value.
func String(s string) json.RawMessage {
	encoded, _ := jsoncodec.Marshal(s)
	return encoded
}

// Int encodes i as a raw JSON number value.
func Int(i int) json.RawMessage {
	encoded, _ := jsoncodec.Marshal(i)
	return encoded
}
