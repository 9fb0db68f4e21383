// Package records keeps a session's saved location/date-range records in
// sync with the remote CRUD store.
package records

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// Record errors.
var (
	ErrRecordNotFound   = errors.New("record not found")
	ErrInvalidDraft     = errors.New("invalid record draft")
	ErrUnexpectedStatus = errors.New("unexpected store status")
	ErrNoEditableRecord = errors.New("record is not in the local list")
)

// Record is one saved entry. IDs are assigned by the store and never
// generated locally. The weather fields are only filled in by a per-record
// fetch; list responses may leave them nil.
type Record struct {
	ID             int64
	Location       string
	DateRangeStart civil.Date
	DateRangeEnd   civil.Date

	Temperature        *float64
	Humidity           *float64
	WindSpeed          *float64
	WeatherDescription *string
}

// NewRecord is the body of a create call.
type NewRecord struct {
	Location       string
	DateRangeStart civil.Date
	DateRangeEnd   civil.Date
}

// Draft is unvalidated create input as typed by the user.
type Draft struct {
	Location       string `validate:"required"`
	DateRangeStart string `validate:"required"`
	DateRangeEnd   string `validate:"required"`
}

// Patch is the body of an update call. Nil fields are left out.
type Patch struct {
	DateRangeStart *civil.Date
	DateRangeEnd   *civil.Date
}

// IsEmpty reports whether the patch carries no field.
func (p Patch) IsEmpty() bool {
	return p.DateRangeStart == nil && p.DateRangeEnd == nil
}

// Nullable is a field that may be absent, present with a value, or
// present as an explicit null.
type Nullable[T any] struct {
	Present bool
	Value   *T
}

// Set returns a present Nullable holding v.
func Set[T any](v T) Nullable[T] {
	return Nullable[T]{Present: true, Value: &v}
}

// Partial is a record as echoed back by an update: only the fields the
// store actually sent are marked present.
type Partial struct {
	Location       *string
	DateRangeStart *civil.Date
	DateRangeEnd   *civil.Date

	Temperature        Nullable[float64]
	Humidity           Nullable[float64]
	WindSpeed          Nullable[float64]
	WeatherDescription Nullable[string]
}

// Merge overlays the present fields of p onto r. Absent fields keep their
// current value, so enrichment data survives an update response that
// omits it.
func (r Record) Merge(p Partial) Record {
	if p.Location != nil {
		r.Location = *p.Location
	}
	if p.DateRangeStart != nil {
		r.DateRangeStart = *p.DateRangeStart
	}
	if p.DateRangeEnd != nil {
		r.DateRangeEnd = *p.DateRangeEnd
	}
	if p.Temperature.Present {
		r.Temperature = p.Temperature.Value
	}
	if p.Humidity.Present {
		r.Humidity = p.Humidity.Value
	}
	if p.WindSpeed.Present {
		r.WindSpeed = p.WindSpeed.Value
	}
	if p.WeatherDescription.Present {
		r.WeatherDescription = p.WeatherDescription.Value
	}
	return r
}

// StoreError is a non-success answer from the remote store.
type StoreError struct {
	StatusCode int

	// Message is taken from the error payload, empty when there was none.
	Message string
}

func (e *StoreError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("store returned status %d: %s", e.StatusCode, e.Message)
}

// ValidationError rejects a draft before any store call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDraft
}

// OverlayMode tags the detail overlay.
type OverlayMode string

const (
	OverlayClosed  OverlayMode = "closed"
	OverlayViewing OverlayMode = "viewing"
	OverlayEditing OverlayMode = "editing"
)

// Overlay is the single detail surface of the records screen. Record is
// only meaningful when Mode is not OverlayClosed, so a viewed record and an
// edit target can never be shown at the same time.
type Overlay struct {
	Mode   OverlayMode
	Record *Record
}

// IsOpen reports whether the overlay shows a record.
func (o Overlay) IsOpen() bool {
	return o.Mode != OverlayClosed
}

func closedOverlay() Overlay {
	return Overlay{Mode: OverlayClosed}
}

func viewingOverlay(r Record) Overlay {
	return Overlay{Mode: OverlayViewing, Record: &r}
}

func editingOverlay(r Record) Overlay {
	return Overlay{Mode: OverlayEditing, Record: &r}
}
