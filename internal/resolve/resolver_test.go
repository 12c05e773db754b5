package resolve

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bldg-intel/odcv-cli/internal/profile"
	"github.com/bldg-intel/odcv-cli/pkg/geoclient"
)

// fakeClient scripts the external lookup.
type fakeClient struct {
	addr  *geoclient.Address
	err   error
	calls int

	gotHouseNumber string
	gotStreet      string
	gotBorough     string
}

func (f *fakeClient) Lookup(_ context.Context, houseNumber, street, borough string) (*geoclient.Address, error) {
	f.calls++
	f.gotHouseNumber = houseNumber
	f.gotStreet = street
	f.gotBorough = borough
	if f.err != nil {
		return nil, f.err
	}
	return f.addr, nil
}

func TestResolve_ExternalMatch(t *testing.T) {
	fc := &fakeClient{addr: &geoclient.Address{
		BBL:         "1000700001",
		HouseNumber: "77",
		StreetName:  "WATER STREET",
		Borough:     "MANHATTAN",
		ZipCode:     "10005",
		Matched:     true,
	}}
	r, err := New(fc, "")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), "77 Water Street, Manhattan")
	require.NoError(t, err)
	assert.Equal(t, profile.MustBBL("1000700001"), res.BBL)
	assert.Equal(t, PathGeoclient, res.Path)
	assert.Equal(t, "77 WATER STREET", res.Address)

	assert.Equal(t, "77", fc.gotHouseNumber)
	assert.Equal(t, "Water Street", fc.gotStreet)
	assert.Equal(t, "Manhattan", fc.gotBorough)
}

func TestResolve_ExternalNoMatchFallsBack(t *testing.T) {
	fc := &fakeClient{addr: &geoclient.Address{Matched: false}}
	r, err := New(fc, "")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), "140 Broadway")
	require.NoError(t, err)
	assert.Equal(t, profile.MustBBL("1000380001"), res.BBL)
	assert.Equal(t, PathFallback, res.Path)
	assert.Equal(t, 1, fc.calls)
}

func TestResolve_ExternalErrorFallsBack(t *testing.T) {
	fc := &fakeClient{err: eris.New("service unavailable")}
	r, err := New(fc, "")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), "80 Maiden Lane")
	require.NoError(t, err)
	assert.Equal(t, profile.MustBBL("1000420031"), res.BBL)
	assert.Equal(t, PathFallback, res.Path)
}

func TestResolve_NoClientUsesFallback(t *testing.T) {
	r, err := New(nil, "")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), "  1155 Avenue Of The Americas ")
	require.NoError(t, err)
	assert.Equal(t, profile.MustBBL("1010130029"), res.BBL)
	assert.Equal(t, PathFallback, res.Path)
	assert.Equal(t, "MANHATTAN", res.Borough)
}

func TestResolve_FallbackIgnoresBoroughQualifier(t *testing.T) {
	r, err := New(nil, "")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), "77 Water Street, Manhattan")
	require.NoError(t, err)
	assert.Equal(t, profile.MustBBL("1000700001"), res.BBL)
}

func TestResolve_BothMiss(t *testing.T) {
	fc := &fakeClient{addr: &geoclient.Address{Matched: false}}
	r, err := New(fc, "")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "999 Nonexistent Avenue")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_BlankAddress(t *testing.T) {
	r, err := New(nil, "")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestResolve_UnparseableExternalBBLFallsBack(t *testing.T) {
	fc := &fakeClient{addr: &geoclient.Address{BBL: "0000000000", Matched: true}}
	r, err := New(fc, "")
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), "200 E 42nd Street")
	require.NoError(t, err)
	assert.Equal(t, PathFallback, res.Path)
	assert.Equal(t, profile.MustBBL("1000730001"), res.BBL)
}

func TestResolve_FileEntriesExtendBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fallback.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addresses:
  - address: "345 Park Avenue"
    bbl: "1012860001"
    borough: "MANHATTAN"
    zip_code: "10154"
  - address: "Bad Entry"
    bbl: "not-a-bbl"
`), 0o644))

	r, err := New(nil, path)
	require.NoError(t, err)

	res, err := r.Resolve(context.Background(), "345 park avenue")
	require.NoError(t, err)
	assert.Equal(t, profile.MustBBL("1012860001"), res.BBL)

	// Built-ins survive the merge.
	res, err = r.Resolve(context.Background(), "140 Broadway")
	require.NoError(t, err)
	assert.Equal(t, profile.MustBBL("1000380001"), res.BBL)

	// The invalid entry was skipped, not fatal.
	_, err = r.Resolve(context.Background(), "Bad Entry")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		houseNumber string
		street      string
		borough     string
	}{
		{"comma borough", "77 Water Street, Manhattan", "77", "Water Street", "Manhattan"},
		{"embedded borough", "140 Broadway Brooklyn", "140", "Broadway", "Brooklyn"},
		{"no borough", "80 Maiden Lane", "80", "Maiden Lane", ""},
		{"no house number", "Maiden Lane", "", "", ""},
		{"single token", "Broadway", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hn, st, b := splitAddress(tt.in)
			assert.Equal(t, tt.houseNumber, hn)
			assert.Equal(t, tt.street, st)
			assert.Equal(t, tt.borough, b)
		})
	}
}
