package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Epoch anchors every parsed ascent time. Only minutes and seconds vary.
var Epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// RawRecord is one element of the source JSON array, exactly as fetched.
type RawRecord struct {
	Time        string  `json:"Time" validate:"required"` // "MM:SS"
	Doping      string  `json:"Doping"`                   // may be padded, empty = none
	Name        string  `json:"Name" validate:"required"`
	Nationality string  `json:"Nationality" validate:"required"`
	URL         string  `json:"URL"`
	Year        RawYear `json:"Year"`
}

// RawYear holds a year as it appeared on the wire: a JSON number or a JSON
// string. Two RawYear values are equal only if both the text and the form
// match, so 1994 and "1994" are different years for duplicate detection.
type RawYear struct {
	text   string
	quoted bool
}

// YearNumber builds a RawYear that was sent as a JSON number.
func YearNumber(n int) RawYear {
	return RawYear{text: strconv.Itoa(n)}
}

// YearText builds a RawYear that was sent as a JSON string.
func YearText(s string) RawYear {
	return RawYear{text: s, quoted: true}
}

// IsZero reports whether the year was absent or null.
func (y RawYear) IsZero() bool {
	return y == RawYear{}
}

// String returns the raw year text without quotes.
func (y RawYear) String() string {
	return y.text
}

func (y *RawYear) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*y = RawYear{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode year: %w", err)
		}
		*y = YearText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode year: %w", err)
	}
	*y = RawYear{text: n.String()}
	return nil
}

func (y RawYear) MarshalJSON() ([]byte, error) {
	switch {
	case y.IsZero():
		return []byte("null"), nil
	case y.quoted:
		return json.Marshal(y.text)
	default:
		return []byte(y.text), nil
	}
}

// Record is the normalized, typed form of a RawRecord. Records are built once
// per fetch and never modified afterwards.
type Record struct {
	Doping          string    `json:"doping"`
	Name            string    `json:"name"`
	Country         string    `json:"country"`
	Time            time.Time `json:"time"`
	URL             string    `json:"url"`
	Year            int       `json:"year"`
	IsDuplicateYear bool      `json:"isDuplicateYear"`
}

// HasDoping reports whether the record carries a doping allegation.
func (r Record) HasDoping() bool {
	return r.Doping != ""
}

// Extent is the [min, max] range of the year and time fields across a dataset.
type Extent struct {
	MinYear int
	MaxYear int
	MinTime time.Time
	MaxTime time.Time
}
