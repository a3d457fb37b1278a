package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/geocoder89/agendahub/internal/dateformat"
	"github.com/geocoder89/agendahub/internal/domain/event"
)

// Errors maps a field name to every message that fired for it. Rules are
// evaluated independently, nothing short-circuits: a draft with a bad title
// and a bad date reports both, and a title can collect two messages at once.
type Errors map[string][]string

func (e Errors) Valid() bool { return len(e) == 0 }

// Has reports whether any message fired for the field.
func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

// First returns the first message for the field, for single-line rendering.
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

const (
	msgTitleTooShort = "Title must be at least 5 characters long"
	msgTitleNoLetter = "Title must contain at least one letter"
	msgDateFormat    = "Date must be in DD/MM/YYYY format"
	msgDateInvalid   = "Date is not a valid calendar date"
	msgDatePast      = "Cannot add events to past dates. Please select today or a future date."
)

const maxNotesWords = 23

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// Validate checks a draft against the submission rules. It is a pure
// function of the draft and the given day: no clock, no network, no store.
func Validate(d event.Draft, today dateformat.Date) Errors {
	errs := Errors{}

	checkTitle(errs, d.Title)
	checkDate(errs, d.Date, today)
	checkNotes(errs, d.Notes)

	return errs
}

// ValidateNow is Validate against the local clock's current day.
func ValidateNow(d event.Draft) Errors {
	return Validate(d, dateformat.FromTime(time.Now()))
}

func checkTitle(errs Errors, title string) {
	trimmed := strings.TrimSpace(title)

	if len([]rune(trimmed)) < 5 {
		errs.add("title", msgTitleTooShort)
	}

	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		errs.add("title", msgTitleNoLetter)
	}
}

func checkDate(errs Errors, date string, today dateformat.Date) {
	if !datePattern.MatchString(date) {
		errs.add("date", msgDateFormat)
		return
	}

	day, _ := strconv.Atoi(date[0:2])
	month, _ := strconv.Atoi(date[3:5])
	year, _ := strconv.Atoi(date[6:10])

	// time.Date normalizes overflow (31/02 becomes early March), so a
	// round-trip mismatch means the digits never named a real day.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		errs.add("date", msgDateInvalid)
		return
	}

	d := dateformat.Date{Year: year, Month: time.Month(month), Day: day}
	if d.Before(today) {
		errs.add("date", msgDatePast)
	}
}

func checkNotes(errs Errors, notes string) {
	if strings.TrimSpace(notes) == "" {
		return
	}

	words := len(strings.Fields(notes))
	if words > maxNotesWords {
		errs.add("notes", fmt.Sprintf("Notes must be maximum %d words (currently %d)", maxNotesWords, words))
	}
}
