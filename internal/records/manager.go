package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ExportFileName is the download name offered for the CSV export.
const ExportFileName = "weather_entries.csv"

// User-facing messages placed in the error slot.
const (
	MsgFillAllFields  = "Please fill in all fields."
	MsgInvalidDate    = "Please enter dates as YYYY-MM-DD."
	MsgCreateFailed   = "An error occurred while creating the entry."
	MsgCreateRejected = "Failed to create entry. Please try again."
	MsgUpdateFailed   = "Failed to update entry. Please try again."
	MsgDeleteFailed   = "Failed to delete entry. Please try again."
	MsgLoadFailed     = "Failed to load entries. Please try again."
	MsgFetchFailed    = "Failed to fetch entry. Please try again."
	MsgExportFailed   = "Failed to download entries. Please try again."
)

var validate = validator.New()

// View is a point-in-time copy of the records screen.
type View struct {
	Records []Record
	Overlay Overlay
	Error   string
	Loaded  bool
}

// Manager owns one session's record list, overlay and error slot. Store
// calls are serialised per manager; reads never wait on the network.
type Manager struct {
	store  Store
	logger zerolog.Logger

	// op serialises store round-trips so results apply in call order.
	op sync.Mutex

	mu      sync.RWMutex
	records []Record
	overlay Overlay
	errMsg  string
	loaded  bool
}

// NewManager creates a manager with an empty, not yet loaded list.
func NewManager(store Store, logger zerolog.Logger) *Manager {
	return &Manager{
		store:   store,
		logger:  logger.With().Str("component", "records").Logger(),
		overlay: closedOverlay(),
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return View{
		Records: slices.Clone(m.records),
		Overlay: m.overlay,
		Error:   m.errMsg,
		Loaded:  m.loaded,
	}
}

// Loaded reports whether the list has been fetched at least once.
func (m *Manager) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Load fetches the whole collection and replaces the local list.
func (m *Manager) Load(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()

	recs, err := m.store.List(ctx)
	if err != nil {
		m.fail(err, "listing records", MsgLoadFailed)
		return err
	}

	m.mu.Lock()
	m.records = recs
	m.loaded = true
	m.errMsg = ""
	m.mu.Unlock()

	return nil
}

// ValidateDraft checks that every field is filled in and that both dates
// parse. It never touches the network.
func ValidateDraft(d Draft) (NewRecord, error) {
	d.Location = strings.TrimSpace(d.Location)
	d.DateRangeStart = strings.TrimSpace(d.DateRangeStart)
	d.DateRangeEnd = strings.TrimSpace(d.DateRangeEnd)

	if err := validate.Struct(d); err != nil {
		return NewRecord{}, &ValidationError{Message: MsgFillAllFields}
	}

	start, err := civil.ParseDate(d.DateRangeStart)
	if err != nil {
		return NewRecord{}, &ValidationError{Message: MsgInvalidDate}
	}
	end, err := civil.ParseDate(d.DateRangeEnd)
	if err != nil {
		return NewRecord{}, &ValidationError{Message: MsgInvalidDate}
	}

	return NewRecord{Location: d.Location, DateRangeStart: start, DateRangeEnd: end}, nil
}

// Create validates the draft, submits it and appends the returned record.
// The list is only changed once the store has acknowledged the record.
func (m *Manager) Create(ctx context.Context, d Draft) (*Record, error) {
	rec, err := ValidateDraft(d)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			m.setError(verr.Message)
		}
		return nil, err
	}

	m.op.Lock()
	defer m.op.Unlock()

	created, err := m.store.Create(ctx, rec)
	if err != nil {
		m.fail(err, "creating record", createMessage(err))
		return nil, err
	}

	m.mu.Lock()
	m.records = append(m.records, *created)
	m.errMsg = ""
	m.mu.Unlock()

	return created, nil
}

func createMessage(err error) string {
	var storeErr *StoreError
	if errors.As(err, &storeErr) && storeErr.Message != "" {
		return storeErr.Message
	}
	if errors.Is(err, ErrUnexpectedStatus) {
		return MsgCreateRejected
	}
	return MsgCreateFailed
}

// Update sends a partial record. On success the fields echoed by the store
// are merged into the cached entry and the overlay closes.
func (m *Manager) Update(ctx context.Context, id int64, patch Patch) (*Record, error) {
	m.op.Lock()
	defer m.op.Unlock()

	partial, err := m.store.Update(ctx, id, patch)
	if err != nil {
		m.fail(err, "updating record", MsgUpdateFailed)
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var merged *Record
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i] = m.records[i].Merge(*partial)
			r := m.records[i]
			merged = &r
			break
		}
	}
	m.overlay = closedOverlay()
	m.errMsg = ""

	if merged == nil {
		m.logger.Warn().Int64("record_id", id).Msg("updated record is not in the local list")
	}
	return merged, nil
}

// ParsePatch turns optional YYYY-MM-DD texts into a Patch. Blank texts are
// left out.
func ParsePatch(start, end *string) (Patch, error) {
	var p Patch
	for _, f := range []struct {
		text *string
		dst  **civil.Date
	}{{start, &p.DateRangeStart}, {end, &p.DateRangeEnd}} {
		if f.text == nil || strings.TrimSpace(*f.text) == "" {
			continue
		}
		d, err := civil.ParseDate(strings.TrimSpace(*f.text))
		if err != nil {
			return Patch{}, &ValidationError{Message: MsgInvalidDate}
		}
		*f.dst = &d
	}
	return p, nil
}

// UpdateDates parses the edit form's date texts and updates the record.
// An unparseable date sets the error slot without calling the store.
func (m *Manager) UpdateDates(ctx context.Context, id int64, start, end *string) (*Record, error) {
	patch, err := ParsePatch(start, end)
	if err != nil {
		m.setError(MsgInvalidDate)
		return nil, err
	}
	return m.Update(ctx, id, patch)
}

// Delete removes one record. Other entries keep their relative order.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	m.op.Lock()
	defer m.op.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		m.fail(err, "deleting record", MsgDeleteFailed)
		return err
	}

	m.mu.Lock()
	m.records = slices.DeleteFunc(m.records, func(r Record) bool { return r.ID == id })
	if m.overlay.IsOpen() && m.overlay.Record.ID == id {
		m.overlay = closedOverlay()
	}
	m.errMsg = ""
	m.mu.Unlock()

	return nil
}

// View fetches one record with its weather fields and opens the overlay in
// read-only mode.
func (m *Manager) View(ctx context.Context, id int64) (*Record, error) {
	m.op.Lock()
	defer m.op.Unlock()

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		m.fail(err, "fetching record", MsgFetchFailed)
		return nil, err
	}

	m.mu.Lock()
	m.overlay = viewingOverlay(*rec)
	m.mu.Unlock()

	return rec, nil
}

// BeginEdit opens the overlay in edit mode on the cached record.
func (m *Manager) BeginEdit(id int64) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.ID == id {
			m.overlay = editingOverlay(r)
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNoEditableRecord, id)
}

// CloseOverlay closes the overlay whatever its mode.
func (m *Manager) CloseOverlay() {
	m.mu.Lock()
	m.overlay = closedOverlay()
	m.mu.Unlock()
}

// Export returns the store's CSV rendering unchanged.
func (m *Manager) Export(ctx context.Context) ([]byte, error) {
	data, err := m.store.ExportCSV(ctx)
	if err != nil {
		m.fail(err, "exporting records", MsgExportFailed)
		return nil, err
	}
	return data, nil
}

func (m *Manager) fail(err error, op, msg string) {
	m.logger.Error().Err(err).Str("op", op).Msg("record store call failed")
	m.setError(msg)
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
}
