package models

import "github.com/skydeck/skydeck/internal/records"

// Record is one saved entry. Dates are YYYY-MM-DD.
type Record struct {
	ID                 int64    `json:"id"`
	Location           string   `json:"location"`
	DateRangeStart     string   `json:"dateRangeStart"`
	DateRangeEnd       string   `json:"dateRangeEnd"`
	Temperature        *float64 `json:"temperature,omitempty"`
	Humidity           *float64 `json:"humidity,omitempty"`
	WindSpeed          *float64 `json:"windSpeed,omitempty"`
	WeatherDescription *string  `json:"weatherDescription,omitempty"`
}

// Overlay is the records detail overlay. Record is omitted when closed.
type Overlay struct {
	Mode   records.OverlayMode `json:"mode"`
	Record *Record             `json:"record,omitempty"`
}

// RecordsView is the records screen state.
type RecordsView struct {
	Records []Record `json:"records"`
	Overlay Overlay  `json:"overlay"`
	Error   string   `json:"error,omitempty"`
	Loaded  bool     `json:"loaded"`
}

// CreateRecordRequest is the body of POST /v1/records.
type CreateRecordRequest struct {
	Location       string `json:"location"`
	DateRangeStart string `json:"dateRangeStart"`
	DateRangeEnd   string `json:"dateRangeEnd"`
}

// Draft converts the request to unvalidated create input.
func (r CreateRecordRequest) Draft() records.Draft {
	return records.Draft{
		Location:       r.Location,
		DateRangeStart: r.DateRangeStart,
		DateRangeEnd:   r.DateRangeEnd,
	}
}

// UpdateRecordRequest is the body of PUT /v1/records/{id}. Omitted dates
// are left unchanged.
type UpdateRecordRequest struct {
	DateRangeStart *string `json:"dateRangeStart,omitempty"`
	DateRangeEnd   *string `json:"dateRangeEnd,omitempty"`
}

// NewRecord converts a record to its wire form.
func NewRecord(r records.Record) Record {
	return Record{
		ID:                 r.ID,
		Location:           r.Location,
		DateRangeStart:     r.DateRangeStart.String(),
		DateRangeEnd:       r.DateRangeEnd.String(),
		Temperature:        r.Temperature,
		Humidity:           r.Humidity,
		WindSpeed:          r.WindSpeed,
		WeatherDescription: r.WeatherDescription,
	}
}

// NewRecordsView converts a records snapshot to its wire form.
func NewRecordsView(v records.View) RecordsView {
	out := RecordsView{
		Records: make([]Record, 0, len(v.Records)),
		Overlay: Overlay{Mode: v.Overlay.Mode},
		Error:   v.Error,
		Loaded:  v.Loaded,
	}
	for _, r := range v.Records {
		out.Records = append(out.Records, NewRecord(r))
	}
	if v.Overlay.IsOpen() && v.Overlay.Record != nil {
		rec := NewRecord(*v.Overlay.Record)
		out.Overlay.Record = &rec
	}
	return out
}
