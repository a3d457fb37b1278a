package validate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/agendahub/internal/dateformat"
	"github.com/geocoder89/agendahub/internal/domain/event"
	"github.com/geocoder89/agendahub/internal/validate"
)

// a fixed "today" keeps the past-date rule deterministic
var today = dateformat.Date{Year: 2025, Month: time.March, Day: 5}

func validDraft() event.Draft {
	return event.Draft{
		Title: "Team standup",
		Date:  "06/03/2025",
		Notes: "bring the quarterly numbers",
	}
}

func TestValidateAcceptsGoodDraft(t *testing.T) {
	errs := validate.Validate(validDraft(), today)
	if !errs.Valid() {
		t.Fatalf("expected valid draft, got %v", errs)
	}
}

func TestTitleRules(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		wantMsgs int
	}{
		{name: "too_short", title: "abcd", wantMsgs: 1},
		{name: "whitespace_only_counts_trimmed", title: "  ab  ", wantMsgs: 1},
		{name: "no_letter", title: "123456", wantMsgs: 1},
		{name: "short_and_no_letter_both_fire", title: "12", wantMsgs: 2},
		{name: "five_chars_with_letter", title: "12a45", wantMsgs: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			d.Title = tc.title

			errs := validate.Validate(d, today)
			if got := len(errs["title"]); got != tc.wantMsgs {
				t.Fatalf("title %q: got %d messages %v, want %d", tc.title, got, errs["title"], tc.wantMsgs)
			}
		})
	}
}

func TestTitleCheckedEvenWhenDateFails(t *testing.T) {
	d := event.Draft{Title: "abc", Date: "bad"}

	errs := validate.Validate(d, today)
	if !errs.Has("title") {
		t.Fatal("title error should be reported alongside the date error")
	}
	if !errs.Has("date") {
		t.Fatal("date error missing")
	}
}

func TestDateRules(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{name: "leap_day_valid_year", date: "29/02/2028", wantErr: false},
		{name: "leap_day_common_year", date: "29/02/2027", wantErr: true},
		{name: "leap_day_century_year", date: "29/02/2100", wantErr: true},
		{name: "overflowing_february", date: "31/02/2025", wantErr: true},
		{name: "wrong_format_iso", date: "2025-03-06", wantErr: true},
		{name: "single_digit_day", date: "6/03/2025", wantErr: true},
		{name: "empty", date: "", wantErr: true},
		{name: "today_is_fine", date: "05/03/2025", wantErr: false},
		{name: "yesterday_rejected", date: "04/03/2025", wantErr: true},
		{name: "tomorrow_fine", date: "06/03/2025", wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := validDraft()
			d.Date = tc.date

			errs := validate.Validate(d, today)
			if got := errs.Has("date"); got != tc.wantErr {
				t.Fatalf("date %q: error=%v (%v), want error=%v", tc.date, got, errs["date"], tc.wantErr)
			}
		})
	}
}

func TestPastLeapDayFailsPastRuleOnly(t *testing.T) {
	d := validDraft()
	d.Date = "29/02/2024"

	errs := validate.Validate(d, today)
	if got := errs.First("date"); got != "Cannot add events to past dates. Please select today or a future date." {
		t.Fatalf("date message = %q", got)
	}
	if len(errs["date"]) != 1 {
		t.Fatalf("a real calendar day in the past should only trip the past rule: %v", errs["date"])
	}
}

func TestNotesWordLimit(t *testing.T) {
	d := validDraft()

	d.Notes = strings.Repeat("word ", 23)
	if errs := validate.Validate(d, today); errs.Has("notes") {
		t.Fatalf("23 words should pass, got %v", errs["notes"])
	}

	d.Notes = strings.Repeat("word ", 24)
	errs := validate.Validate(d, today)
	if !errs.Has("notes") {
		t.Fatal("24 words should fail")
	}
	if !strings.Contains(errs.First("notes"), "24") {
		t.Fatalf("message should carry the actual count: %q", errs.First("notes"))
	}
}

func TestNotesOptional(t *testing.T) {
	d := validDraft()
	d.Notes = "   "

	if errs := validate.Validate(d, today); errs.Has("notes") {
		t.Fatalf("blank notes are fine, got %v", errs["notes"])
	}
}

func TestLocationUnconstrained(t *testing.T) {
	d := validDraft()
	d.Location = strings.Repeat("x", 10000)

	if errs := validate.Validate(d, today); !errs.Valid() {
		t.Fatalf("location must not be validated, got %v", errs)
	}
}
