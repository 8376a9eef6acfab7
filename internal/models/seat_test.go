package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatCode(t *testing.T) {
	tests := []struct {
		floor, row, col int
		expected        string
	}{
		{0, 0, 0, "A11"},
		{0, 0, 1, "A12"},
		{0, 1, 0, "A21"},
		{1, 0, 0, "B11"},
		{1, 2, 3, "B34"},
		{2, 9, 3, "C104"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SeatCode(tt.floor, tt.row, tt.col))
	}
}

func TestTripSeatCodes(t *testing.T) {
	trip := &Trip{Floors: 2, Rows: 3, Cols: 2}

	codes := trip.SeatCodes()
	assert.Len(t, codes, 12)
	assert.Equal(t, "A11", codes[0])
	assert.Equal(t, "A12", codes[1])
	assert.Equal(t, "A21", codes[2])
	assert.Equal(t, "B32", codes[11])

	// Every code is unique.
	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "duplicate seat code %s", code)
		seen[code] = true
	}
}
