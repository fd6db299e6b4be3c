package client

// parse.go turns one spreadsheet row into a Client record.
//
// A row that fails validation is skipped, not fatal: ParseRow returns a
// SkipError naming the offending subject and field so the caller can report
// it and keep going with the rest of the import.

import (
	"fmt"
	"strings"
)

// NumColumns is the fixed column count of an import row.
// Columns, in order: card code, last name, first name, patronymic, mobile
// phone, email, gender, birthday, city, postal code, bonus, turnover.
const NumColumns = 12

// Cell positions within an import row.
const (
	colCardCode = iota
	colLastName
	colFirstName
	colPatronymic
	colPhoneMobile
	colEmail
	colGender
	colBirthday
	colCity
	colPostalCode
	colBonus
	colTurnover
)

// SkipError reports a row-level validation failure. Subject identifies the
// row by the client's last name (the way operators recognize rows), Field
// names the offending column.
type SkipError struct {
	Subject string
	Field   string
	Reason  string
}

func (e *SkipError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "(no last name)"
	}
	return fmt.Sprintf("client %s: %s: %s", subject, e.Field, e.Reason)
}

// ParseRow assembles a Client from twelve positional cells.
//
// Each cell is trimmed first. Validation runs in a fixed order and stops at
// the first failure: the required-fields gate (card code, phone, last name),
// then phone normalization, birthday, postal code, bonus, turnover. Rows
// shorter than NumColumns are padded with empty cells so trailing optional
// columns may be omitted in the workbook.
func ParseRow(cells []string) (*Client, error) {
	row := make([]string, NumColumns)
	for i := range row {
		if i < len(cells) {
			row[i] = strings.TrimSpace(cells[i])
		}
	}

	lastName := row[colLastName]

	for _, req := range []struct {
		value string
		field string
	}{
		{row[colCardCode], "card code"},
		{row[colPhoneMobile], "phone"},
		{lastName, "last name"},
	} {
		if req.value == "" {
			return nil, &SkipError{Subject: lastName, Field: req.field, Reason: "required field is empty"}
		}
	}

	phone, err := NormalizePhone(row[colPhoneMobile])
	if err != nil {
		return nil, &SkipError{Subject: lastName, Field: "phone", Reason: err.Error()}
	}

	birthday, err := ParseBirthday(row[colBirthday])
	if err != nil {
		return nil, &SkipError{Subject: lastName, Field: "birthday", Reason: err.Error()}
	}

	postalCode, err := ParsePostalCode(row[colPostalCode])
	if err != nil {
		return nil, &SkipError{Subject: lastName, Field: "postal code", Reason: err.Error()}
	}

	bonus, err := ParseOptionalInt(row[colBonus])
	if err != nil {
		return nil, &SkipError{Subject: lastName, Field: "bonus", Reason: err.Error()}
	}

	turnover, err := ParseOptionalInt(row[colTurnover])
	if err != nil {
		return nil, &SkipError{Subject: lastName, Field: "turnover", Reason: err.Error()}
	}

	return &Client{
		CardCode:    row[colCardCode],
		LastName:    lastName,
		FirstName:   row[colFirstName],
		Patronymic:  row[colPatronymic],
		PhoneMobile: phone,
		Email:       row[colEmail],
		GenderID:    row[colGender], // blank stays "", never null
		Birthday:    birthday,
		City:        row[colCity],
		PostalCode:  postalCode,
		Bonus:       bonus,
		Turnover:    turnover,
	}, nil
}
