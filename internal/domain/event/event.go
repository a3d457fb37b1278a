package event

import (
	"errors"

	"github.com/geocoder89/agendahub/internal/dateformat"
)

// Event is a record as the remote store returns it. The store is
// authoritative: IDs are assigned there and the date comes back in ISO form
// (YYYY-MM-DD) regardless of what the draft carried.
type Event struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

var ErrNotFound = errors.New("event not found")

// Draft is a candidate record before the remote store has accepted it: no ID
// yet, date in the day-first display form the forms collect (DD/MM/YYYY).
// Edits stage into a Draft too, so a record is never mutated in place
// without re-validation.
type Draft struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// CalendarEvent is the projection the calendar widget consumes.
type CalendarEvent struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"` // ISO, the widget's canonical form
}

// StageDraft copies the record into an editable draft, converting the date
// back to display form for the form fields.
func (e Event) StageDraft() Draft {
	return Draft{
		Title:    e.Title,
		Date:     dateformat.ToDisplay(e.Date),
		Location: e.Location,
		Notes:    e.Notes,
	}
}

// DisplayDate renders the record's date in the day-first display form.
func (e Event) DisplayDate() string {
	return dateformat.ToDisplay(e.Date)
}
