package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billvox/internal/intent"
)

func TestRemoteParser_NormalizesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gst eighteen percent", req["text"])
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"intent": "SetGST",
			"entities": map[string]any{
				"includeGST": true,
				"gstRate":    18,
			},
		})
	}))
	defer srv.Close()

	p := NewRemoteParser(srv.URL, "test-key", 0)
	in, err := p.Parse(context.Background(), "gst eighteen percent", "user-1", "en-IN")

	require.NoError(t, err)
	assert.Equal(t, intent.SetGST, in.Name)
	assert.True(t, in.Entities.IncludeGST)
	assert.Equal(t, 18.0, in.Entities.GSTRate)
}

func TestRemoteParser_NonTwoHundredIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewRemoteParser(srv.URL, "", 0)
	_, err := p.Parse(context.Background(), "anything", "user-1", "en-IN")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
