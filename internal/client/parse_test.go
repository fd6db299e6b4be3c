package client

import (
	"errors"
	"testing"
	"time"
)

func TestParseRowFull(t *testing.T) {
	cells := []string{
		"123456", "Smith", "John", "", "9161234567", "", "",
		"01.02.1990", "Moscow", "101000", "50", "",
	}

	c, err := ParseRow(cells)
	if err != nil {
		t.Fatalf("ParseRow() unexpected error: %v", err)
	}

	if c.CardCode != "123456" {
		t.Errorf("CardCode = %q, want %q", c.CardCode, "123456")
	}
	if c.LastName != "Smith" || c.FirstName != "John" {
		t.Errorf("name = %q %q, want Smith John", c.LastName, c.FirstName)
	}
	if c.PhoneMobile != "+79161234567" {
		t.Errorf("PhoneMobile = %q, want +79161234567", c.PhoneMobile)
	}
	if want := time.Date(1990, 2, 1, 0, 0, 0, 0, time.UTC); !c.Birthday.Equal(want) {
		t.Errorf("Birthday = %v, want %v", c.Birthday, want)
	}
	if c.PostalCode == nil || *c.PostalCode != 101000 {
		t.Errorf("PostalCode = %v, want 101000", c.PostalCode)
	}
	if c.Bonus == nil || *c.Bonus != 50 {
		t.Errorf("Bonus = %v, want 50", c.Bonus)
	}
	if c.Turnover != nil {
		t.Errorf("Turnover = %v, want nil", c.Turnover)
	}
	if c.GenderID != "" {
		t.Errorf("GenderID = %q, want empty string", c.GenderID)
	}
}

func TestParseRowSkips(t *testing.T) {
	valid := []string{
		"123456", "Smith", "John", "", "9161234567", "", "",
		"01.02.1990", "Moscow", "101000", "50", "100",
	}

	tests := []struct {
		name      string
		mutate    func(row []string)
		wantField string
	}{
		{
			name:      "empty card code",
			mutate:    func(row []string) { row[0] = "" },
			wantField: "card code",
		},
		{
			name:      "empty phone",
			mutate:    func(row []string) { row[4] = "" },
			wantField: "phone",
		},
		{
			name:      "empty last name",
			mutate:    func(row []string) { row[1] = "  " },
			wantField: "last name",
		},
		{
			name:      "five digit phone",
			mutate:    func(row []string) { row[4] = "12345" },
			wantField: "phone",
		},
		{
			name:      "bad birthday",
			mutate:    func(row []string) { row[7] = "never" },
			wantField: "birthday",
		},
		{
			name:      "bad bonus",
			mutate:    func(row []string) { row[10] = "many" },
			wantField: "bonus",
		},
		{
			name:      "bad turnover",
			mutate:    func(row []string) { row[11] = "1.5x" },
			wantField: "turnover",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := make([]string, len(valid))
			copy(row, valid)
			tt.mutate(row)

			_, err := ParseRow(row)
			if err == nil {
				t.Fatal("ParseRow() = nil error, want skip")
			}

			var skip *SkipError
			if !errors.As(err, &skip) {
				t.Fatalf("ParseRow() error type %T, want *SkipError", err)
			}
			if skip.Field != tt.wantField {
				t.Errorf("skip field = %q, want %q", skip.Field, tt.wantField)
			}
		})
	}
}

// Rows may arrive shorter than twelve cells when trailing columns are empty
// in the workbook; they are padded, so only required fields can fail.
func TestParseRowShortRow(t *testing.T) {
	c, err := ParseRow([]string{"123456", "Smith", "John", "", "9161234567", "", "", "01.02.1990"})
	if err != nil {
		t.Fatalf("ParseRow() unexpected error: %v", err)
	}
	if c.City != "" || c.PostalCode != nil || c.Bonus != nil || c.Turnover != nil {
		t.Errorf("optional fields not empty: %+v", c)
	}
}

func TestParseRowTrimsCells(t *testing.T) {
	c, err := ParseRow([]string{
		" 123456 ", " Smith ", " John ", "", " 9161234567 ", " a@b.c ", " m ",
		" 01.02.1990 ", " Moscow ", "", "", "",
	})
	if err != nil {
		t.Fatalf("ParseRow() unexpected error: %v", err)
	}
	if c.CardCode != "123456" || c.LastName != "Smith" || c.Email != "a@b.c" || c.City != "Moscow" {
		t.Errorf("cells not trimmed: %+v", c)
	}
}
