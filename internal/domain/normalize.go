package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeRe matches an ascent time: two-digit minutes and seconds, each 00-59.
// Anything else could not be formatted back to the same "MM:SS" string.
var timeRe = regexp.MustCompile(`^([0-5][0-9]):([0-5][0-9])$`)

// Normalize converts one raw record into a Record. prev is the record
// immediately before raw in input order, or nil for the first record.
//
// Duplicate detection compares prev and raw on their raw Year and Time values,
// before any parsing.
func Normalize(raw RawRecord, prev *RawRecord) (Record, error) {
	if err := checkRequired(raw); err != nil {
		return Record{}, err
	}

	t, err := parseMMSS(raw.Time)
	if err != nil {
		return Record{}, err
	}

	year, err := parseYear(raw.Year)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Doping:          strings.TrimSpace(raw.Doping),
		Name:            raw.Name,
		Country:         raw.Nationality,
		Time:            t,
		URL:             raw.URL,
		Year:            year,
		IsDuplicateYear: isDuplicateYear(prev, raw),
	}, nil
}

// BuildDataset normalizes every raw record in order. The whole batch fails on
// the first malformed record so positional duplicate detection never skips a
// neighbour.
func BuildDataset(raws []RawRecord) ([]Record, error) {
	if len(raws) == 0 {
		return nil, ErrEmptyDataset
	}

	records := make([]Record, len(raws))
	for i := range raws {
		var prev *RawRecord
		if i > 0 {
			prev = &raws[i-1]
		}

		rec, err := Normalize(raws[i], prev)
		if err != nil {
			var merr *MalformedRecordError
			if errors.As(err, &merr) {
				merr.Index = i
			}
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// Extents computes the year and time ranges of a dataset.
func Extents(records []Record) (Extent, error) {
	if len(records) == 0 {
		return Extent{}, ErrEmptyDataset
	}

	ext := Extent{
		MinYear: records[0].Year,
		MaxYear: records[0].Year,
		MinTime: records[0].Time,
		MaxTime: records[0].Time,
	}
	for _, r := range records[1:] {
		ext.MinYear = min(ext.MinYear, r.Year)
		ext.MaxYear = max(ext.MaxYear, r.Year)
		if r.Time.Before(ext.MinTime) {
			ext.MinTime = r.Time
		}
		if r.Time.After(ext.MaxTime) {
			ext.MaxTime = r.Time
		}
	}
	return ext, nil
}

// FormatTime renders an ascent time as "MM:SS", the inverse of parsing.
func FormatTime(t time.Time) string {
	return t.UTC().Format("04:05")
}

// FormatTooltipTime renders an ascent time as MM'SS".
func FormatTooltipTime(t time.Time) string {
	return t.UTC().Format(`04'05"`)
}

func isDuplicateYear(prev *RawRecord, raw RawRecord) bool {
	return prev != nil && prev.Year == raw.Year && prev.Time == raw.Time
}

func parseMMSS(s string) (time.Time, error) {
	m := timeRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, malformed("Time", s, `expected "MM:SS"`, nil)
	}

	// Both groups are two ASCII digits, so Atoi cannot fail.
	mins, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	return time.Date(Epoch.Year(), Epoch.Month(), Epoch.Day(), 0, mins, secs, 0, time.UTC), nil
}

func parseYear(y RawYear) (int, error) {
	n, err := strconv.Atoi(y.String())
	if err != nil {
		return 0, malformed("Year", y.String(), "not an integer", fmt.Errorf("parse year: %w", err))
	}
	return n, nil
}
