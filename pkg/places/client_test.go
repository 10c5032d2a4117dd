package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/place/textsearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "de", r.URL.Query().Get("language"))
		assert.Equal(t, "bakery in Wien, Austria", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(textSearchResponse{
			Status: "OK",
			Results: []Place{
				{
					PlaceID:          "p1",
					Name:             "Bäckerei Huber",
					FormattedAddress: "Hauptstraße 1, 1020 Wien, Austria",
					Types:            []string{"bakery", "store"},
					Rating:           4.6,
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.TextSearch(context.Background(), "bakery", "Wien, Austria")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Bäckerei Huber", results[0].Name)
	assert.Equal(t, "p1", results[0].PlaceID)
	assert.InDelta(t, 4.6, results[0].Rating, 0.001)
}

func TestTextSearch_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(textSearchResponse{Status: "ZERO_RESULTS"})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.TextSearch(context.Background(), "nothing", "Nowhere")

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTextSearch_BadStatusNamesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(textSearchResponse{
			Status:       "REQUEST_DENIED",
			ErrorMessage: "The provided API key is invalid.",
		})
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "bakery", "Wien")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestTextSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "bakery", "Wien")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestDetails_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		assert.Contains(t, r.URL.Query().Get("fields"), "website")

		_ = json.NewEncoder(w).Encode(detailsResponse{
			Status: "OK",
			Result: &PlaceDetails{
				Website:              "https://huber.at",
				FormattedPhoneNumber: "+43 1 2345678",
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	details, err := client.Details(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "https://huber.at", details.Website)
	assert.Equal(t, "+43 1 2345678", details.FormattedPhoneNumber)
}

func TestDetails_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(detailsResponse{Status: "NOT_FOUND"})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Details(context.Background(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestTextSearch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.TextSearch(context.Background(), "bakery", "Wien")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
