// Command validate checks a local cyclist dataset file offline. It decodes the
// file, normalizes every record, computes the chart scales and layout, and
// verifies that normalized records survive a JSON round trip and still format
// back to their source values.
//
// Usage:
//
//	go run ./cmd/validate -file data/mock/cyclist-data.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/couchcryptid/cyclist-scatter/internal/adapter/source"
	"github.com/couchcryptid/cyclist-scatter/internal/chart"
	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/scale"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "data/mock/cyclist-data.json", "path to a cyclist dataset JSON file")
	flag.Parse()

	os.Exit(run(*file, os.Stdout))
}

func run(path string, out io.Writer) int {
	fmt.Fprintln(out, "=== Cyclist Dataset Validation ===")
	fmt.Fprintln(out)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(out, "FATAL: open dataset: %v\n", err)
		return 1
	}
	defer f.Close()

	var (
		raws    []domain.RawRecord
		records []domain.Record
		scales  scale.Scales
	)

	decode := &phase{name: "Phase 1: Decode (JSON array)"}
	raws, err = source.DecodeRecords(f)
	if err != nil {
		decode.errorf("%v", err)
	}

	normalize := &phase{name: "Phase 2: Normalize (records)"}
	if decode.passed() {
		records, err = domain.BuildDataset(raws)
		if err != nil {
			normalize.errorf("%v", err)
		}
	}

	layout := &phase{name: "Phase 3: Layout (scales and chart)"}
	if records != nil {
		scales, err = scale.ComputeForLayout(records, scale.DefaultLayout)
		if err != nil {
			layout.errorf("%v", err)
		} else {
			checkLayout(layout, records, scales)
		}
	}

	roundTrip := &phase{name: "Phase 4: Round trip (JSON and formatting)"}
	if records != nil {
		checkRoundTrip(roundTrip, raws, records)
	}

	phases := []*phase{decode, normalize, layout, roundTrip}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d raw, %d normalized, %d duplicate-year\n",
		len(raws), len(records), countDuplicates(records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// checkLayout verifies every point lands inside the plot area.
func checkLayout(p *phase, records []domain.Record, s scale.Scales) {
	l := scale.DefaultLayout
	view := chart.Build(records, s, l)

	if len(view.Points) != len(records) {
		p.errorf("point count: expected %d, got %d", len(records), len(view.Points))
		return
	}
	for i, pt := range view.Points {
		if pt.CX < 0 || pt.CX > l.InnerWidth() {
			p.errorf("record %d: cx %.2f outside [0, %.0f]", i, pt.CX, l.InnerWidth())
		}
		if pt.CY < 0 || pt.CY > l.InnerHeight() {
			p.errorf("record %d: cy %.2f outside [0, %.0f]", i, pt.CY, l.InnerHeight())
		}
	}
	if len(view.Legend) == 0 || len(view.Legend) > 2 {
		p.errorf("legend: expected 1 or 2 entries, got %d", len(view.Legend))
	}
}

func checkRoundTrip(p *phase, raws []domain.RawRecord, records []domain.Record) {
	data, err := json.Marshal(records)
	if err != nil {
		p.errorf("marshal: %v", err)
		return
	}
	var decoded []domain.Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		p.errorf("unmarshal: %v", err)
		return
	}

	for i := range records {
		if !decoded[i].Time.Equal(records[i].Time) || decoded[i].Year != records[i].Year ||
			decoded[i].IsDuplicateYear != records[i].IsDuplicateYear {
			p.errorf("record %d: JSON round trip changed the record", i)
		}
		if got := domain.FormatTime(records[i].Time); got != raws[i].Time {
			p.errorf("record %d: time formats as %q, source has %q", i, got, raws[i].Time)
		}
		if got := strconv.Itoa(records[i].Year); got != raws[i].Year.String() {
			p.errorf("record %d: year formats as %q, source has %q", i, got, raws[i].Year.String())
		}
	}
}

func countDuplicates(records []domain.Record) int {
	n := 0
	for _, r := range records {
		if r.IsDuplicateYear {
			n++
		}
	}
	return n
}
