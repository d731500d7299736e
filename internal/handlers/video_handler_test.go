package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRangeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		start  int64
		end    int64
		ok     bool
	}{
		{"empty header", "", 0, -1, true},
		{"full range", "bytes=0-1023", 0, 1023, true},
		{"first byte only", "bytes=0-0", 0, 0, true},
		{"open ended", "bytes=500-", 500, -1, true},
		{"wrong unit", "items=0-10", 0, 0, false},
		{"missing separator", "bytes=100", 0, 0, false},
		{"end before start", "bytes=10-5", 0, 0, false},
		{"negative start", "bytes=-5-10", 0, 0, false},
		{"garbage", "bytes=a-b", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseRangeHeader(tt.header)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
