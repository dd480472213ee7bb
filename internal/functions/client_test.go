package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

func newTestClient(retries int) *Client {
	c := NewClient(5*time.Second, retries)
	c.initialInterval = time.Millisecond
	return c
}

func TestImageUploaderSendsPayload(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":        "abc123",
			"original":  "https://cdn/o.jpg",
			"optimized": "https://cdn/opt.webp",
			"small":     "https://cdn/s.webp",
			"medium":    "https://cdn/m.webp",
			"large":     "https://cdn/l.webp",
		})
	}))
	defer server.Close()

	uploader := NewImageUploader(newTestClient(0), server.URL)
	renditions, err := uploader.Ingest(context.Background(), &types.ImageInput{FileName: "a.jpg", FileType: "image/jpeg", Encoded: "Zm9v"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"fileName": "a.jpg", "fileType": "image/jpeg", "image": "Zm9v"}, got)
	assert.Equal(t, "abc123", renditions.ContentID)
	assert.Equal(t, "https://cdn/l.webp", renditions.Large)
}

func TestClientSurfacesRemoteMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message field", body: `{"message":"File too large"}`, want: "File too large"},
		{name: "error field", body: `{"error":"bad input"}`, want: "bad input"},
		{name: "bare string", body: `"nope"`, want: "nope"},
		{name: "plain text", body: "teapot", want: "teapot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := newTestClient(3).PostJSON(context.Background(), server.URL, map[string]string{}, nil)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			// 4xx answers are not retried
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"allergens":["Dairy","Wheat"]}`))
	}))
	defer server.Close()

	detector := NewAllergenDetector(newTestClient(2), server.URL)
	allergens, err := detector.Detect(context.Background(), "Pancakes", []types.IngredientInput{{Name: "flour", Amount: "2", Unit: "cup"}})
	require.NoError(t, err)
	assert.Equal(t, []models.Allergen{models.AllergenDairy, models.AllergenWheat}, allergens)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"cold start"}`))
	}))
	defer server.Close()

	err := newTestClient(1).PostJSON(context.Background(), server.URL, struct{}{}, nil)
	require.Error(t, err)
	assert.Equal(t, "cold start", err.Error())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAllergenDetectorRejectsUnknownTags(t *testing.T) {
	var body detectRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"allergens":["Gluten"]}`))
	}))
	defer server.Close()

	_, err := NewAllergenDetector(newTestClient(0), server.URL).Detect(context.Background(), "Bread", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gluten")
	assert.Equal(t, "Bread", body.Title)
	assert.NotNil(t, body.Ingredients)
}

func TestImageDeleterPostsID(t *testing.T) {
	var got deleteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok, not json"))
	}))
	defer server.Close()

	require.NoError(t, NewImageDeleter(newTestClient(0), server.URL).Remove(context.Background(), "deadbeef"))
	assert.Equal(t, "deadbeef", got.ID)
}

func TestMissingEndpoint(t *testing.T) {
	_, err := NewImageUploader(newTestClient(0), "").Ingest(context.Background(), &types.ImageInput{})
	assert.ErrorIs(t, err, errNoEndpoint)
	assert.ErrorIs(t, NewImageDeleter(newTestClient(0), "").Remove(context.Background(), "x"), errNoEndpoint)
}
