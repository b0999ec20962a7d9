package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
)

// toRaw round-trips generated records through JSON, as the service would
// receive them.
func toRaw(t *testing.T, records []mockRecord) []domain.RawRecord {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	var raws []domain.RawRecord
	require.NoError(t, json.Unmarshal(data, &raws))
	return raws
}

func TestGenerate_Deterministic(t *testing.T) {
	assert.Equal(t, generate(35, 7), generate(35, 7))
	assert.NotEqual(t, generate(35, 7), generate(35, 8))
}

func TestGenerate_NormalizesCleanly(t *testing.T) {
	records := generate(35, 1)
	require.Len(t, records, 35)

	ds, err := domain.BuildDataset(toRaw(t, records))
	require.NoError(t, err)

	var dupes int
	for i, r := range ds {
		if r.IsDuplicateYear {
			dupes++
			assert.Equal(t, 6, i%7, "only the planted duplicates are flagged")
		}
		assert.Equal(t, records[i].Place, i+1)
	}
	assert.Equal(t, 5, dupes)
}

func TestGenerate_EdgeCases(t *testing.T) {
	records := generate(35, 1)

	var quoted, padded int
	for i, r := range records {
		data, err := json.Marshal(r.Year)
		require.NoError(t, err)
		if data[0] == '"' {
			quoted++
		}
		if r.Doping != "" && r.Doping[len(r.Doping)-1] == ' ' {
			padded++
		}
		if i > 0 {
			assert.GreaterOrEqual(t, r.Seconds, records[i-1].Seconds, "sorted by time")
		}
	}
	assert.Positive(t, padded, "some doping text is padded")
	assert.Positive(t, quoted, "some years are strings")
	assert.Less(t, quoted, len(records), "some years are numbers")
}
