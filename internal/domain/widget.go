package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Widget limits
const (
	MaxWidgetNameLength        = 120
	MaxWidgetDescriptionLength = 2000
)

// Widget is the example resource served by the skeleton. It exists so that
// every part of the request contract (paging, lookups, validation) has a
// concrete entity flowing through it.
type Widget struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewWidget creates a new Widget with a fresh ID and timestamps.
// Returns a *ValidationError listing every failed field if the input is invalid.
func NewWidget(name, description string, quantity int) (*Widget, error) {
	now := time.Now().UTC()
	w := &Widget{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks if the Widget has valid data.
func (w *Widget) Validate() error {
	verr := &ValidationError{Entity: "widget"}

	if w.ID == uuid.Nil {
		verr.Add("id", "can't be blank")
	}
	if strings.TrimSpace(w.Name) == "" {
		verr.Add("name", "can't be blank")
	} else if utf8.RuneCountInString(w.Name) > MaxWidgetNameLength {
		verr.Add("name", "is too long (maximum is 120 characters)")
	}
	if utf8.RuneCountInString(w.Description) > MaxWidgetDescriptionLength {
		verr.Add("description", "is too long (maximum is 2000 characters)")
	}
	if w.Quantity < 0 {
		verr.Add("quantity", "must be greater than or equal to 0")
	}

	return verr.OrNil()
}
