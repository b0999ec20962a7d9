// Command genmock writes a synthetic cyclist dataset for local runs and
// tests. Output is deterministic for a given seed and exercises the edge
// cases the normalizer handles: adjacent duplicate year/time pairs, years sent
// as numbers and as strings, and doping text with surrounding whitespace.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/generated.json -n 35 -seed 1
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
)

// mockRecord mirrors the published dataset, including the fields the
// service ignores.
type mockRecord struct {
	Time        string         `json:"Time"`
	Place       int            `json:"Place"`
	Seconds     int            `json:"Seconds"`
	Name        string         `json:"Name"`
	Year        domain.RawYear `json:"Year"`
	Nationality string         `json:"Nationality"`
	Doping      string         `json:"Doping"`
	URL         string         `json:"URL"`
}

var riders = []struct{ name, country string }{
	{"Marco Pantani", "ITA"},
	{"Lance Armstrong", "USA"},
	{"Jan Ullrich", "GER"},
	{"Miguel Indurain", "ESP"},
	{"Bjarne Riis", "DEN"},
	{"Richard Virenque", "FRA"},
	{"Laurent Madouas", "FRA"},
	{"Nairo Quintana", "COL"},
	{"Alberto Contador", "ESP"},
	{"Tony Rominger", "SUI"},
}

var allegations = []string{
	"Alleged drug use during %d due to high hematocrit levels",
	"%d Tour de France title stripped by UCI in 2012",
	"Confessed in %d to taking EPO",
}

const (
	minSeconds = 36*60 + 50
	maxSeconds = 40 * 60
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated dataset")
	n := flag.Int("n", 35, "number of records")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *n < 1 {
		return fmt.Errorf("-n must be at least 1, got %d", *n)
	}

	records := generate(*n, *seed)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(*out, append(data, '\n'), 0o644); err != nil { //nolint:gosec // fixture file
		return fmt.Errorf("write %s: %w", *out, err)
	}

	log.Printf("wrote %d records to %s", len(records), *out)
	return nil
}

// generate builds n records sorted by ascent time, fastest first.
func generate(n int, seed uint64) []mockRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // deterministic fixtures

	secs := make([]int, n)
	for i := range secs {
		secs[i] = minSeconds + rng.IntN(maxSeconds-minSeconds)
	}
	sort.Ints(secs)

	records := make([]mockRecord, n)
	for i := range records {
		rider := riders[rng.IntN(len(riders))]
		year := 1990 + rng.IntN(26)

		rec := mockRecord{
			Time:        fmt.Sprintf("%02d:%02d", secs[i]/60, secs[i]%60),
			Place:       i + 1,
			Seconds:     secs[i],
			Name:        rider.name,
			Year:        domain.YearNumber(year),
			Nationality: rider.country,
		}
		if i%5 == 4 {
			rec.Year = domain.YearText(strconv.Itoa(year))
		}
		if i%4 == 1 || rng.IntN(3) > 0 {
			rec.Doping = fmt.Sprintf(allegations[rng.IntN(len(allegations))], year)
			rec.URL = "https://en.wikipedia.org/wiki/" + rider.name
			if i%4 == 1 {
				rec.Doping += " "
			}
		}

		// Equal times are common after sorting; keep unplanned neighbours
		// distinct so only the planted duplicates below are flagged.
		if i > 0 && rec.Time == records[i-1].Time && rec.Year.String() == records[i-1].Year.String() {
			if i%5 == 4 {
				rec.Year = domain.YearText(strconv.Itoa(year + 1))
			} else {
				rec.Year = domain.YearNumber(year + 1)
			}
		}

		// Every seventh record repeats its predecessor's year and time.
		if i > 0 && i%7 == 6 {
			rec.Time = records[i-1].Time
			rec.Seconds = records[i-1].Seconds
			rec.Year = records[i-1].Year
		}
		records[i] = rec
	}
	return records
}
