package geoclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/address.json", r.URL.Path)
		assert.Equal(t, "77", r.URL.Query().Get("houseNumber"))
		assert.Equal(t, "WATER STREET", r.URL.Query().Get("street"))
		assert.Equal(t, "Manhattan", r.URL.Query().Get("borough"))
		assert.Equal(t, "test-id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("app_key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"address": {
				"bbl": "1000700001",
				"houseNumber": "77",
				"firstStreetNameNormalized": "WATER STREET",
				"firstBoroughName": "MANHATTAN",
				"zipCode": "10005",
				"buildingIdentificationNumber": "1001234",
				"latitude": 40.7033,
				"longitude": -74.0081,
				"geosupportReturnCode": "00"
			}
		}`)
	}))
	defer srv.Close()

	c := NewClient("test-id", "test-key", WithBaseURL(srv.URL))

	addr, err := c.Lookup(context.Background(), "77", "WATER STREET", "Manhattan")
	require.NoError(t, err)
	assert.True(t, addr.Matched)
	assert.Equal(t, "1000700001", addr.BBL)
	assert.Equal(t, "MANHATTAN", addr.Borough)
	assert.Equal(t, "10005", addr.ZipCode)
	assert.InDelta(t, 40.7033, addr.Latitude, 0.0001)
}

func TestLookup_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"address": {
				"geosupportReturnCode": "42",
				"message": "ADDRESS NUMBER NOT FOUND"
			}
		}`)
	}))
	defer srv.Close()

	c := NewClient("id", "key", WithBaseURL(srv.URL))

	addr, err := c.Lookup(context.Background(), "9999", "NOWHERE STREET", "")
	require.NoError(t, err)
	assert.False(t, addr.Matched)
	assert.Empty(t, addr.BBL)
}

func TestLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("id", "key", WithBaseURL(srv.URL))

	_, err := c.Lookup(context.Background(), "77", "WATER STREET", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestLookup_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"address": `)
	}))
	defer srv.Close()

	c := NewClient("id", "key", WithBaseURL(srv.URL))

	_, err := c.Lookup(context.Background(), "77", "WATER STREET", "")
	require.Error(t, err)
}

func TestLookup_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"address": {"bbl": "1000700001"}}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("id", "key", WithBaseURL(srv.URL))

	_, err := c.Lookup(ctx, "77", "WATER STREET", "")
	require.Error(t, err)
}
