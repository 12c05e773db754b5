package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBBL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    BBL
		wantErr bool
	}{
		{"canonical passes through", "1000700001", "1000700001", false},
		{"dashes stripped", "1-00070-0001", "1000700001", false},
		{"slashes and spaces stripped", "1 / 00070 / 0001", "1000700001", false},
		{"short input left-padded", "10130029", "0010130029", false},
		{"single digit padded", "7", "0000000007", false},
		{"surrounding text ignored", "BBL:1010130029", "1010130029", false},
		{"empty rejected", "", "", true},
		{"no digits rejected", "n/a", "", true},
		{"too long rejected", "10007000011", "", true},
		{"all zeros rejected", "0000000000", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBBL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBBL_Idempotent(t *testing.T) {
	inputs := []string{"1000700001", "1-00070-0001", "10130029", "4", "2001230045"}
	for _, raw := range inputs {
		once, err := ParseBBL(raw)
		require.NoError(t, err)
		twice, err := ParseBBL(string(once))
		require.NoError(t, err)
		assert.Equal(t, once, twice, "normalize(normalize(%q)) must equal normalize(%q)", raw, raw)
	}
}

func TestBBL_Segments(t *testing.T) {
	b := MustBBL("1000700001")
	assert.Equal(t, "1", b.Borough())
	assert.Equal(t, "00070", b.Block())
	assert.Equal(t, "0001", b.Lot())
}
