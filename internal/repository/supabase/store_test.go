package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/internal/domain/prediction"
	"savewise/internal/domain/profile"
	"savewise/pkg/errors"
)

func sampleRecord() *prediction.Record {
	return &prediction.Record{
		Timestamp: prediction.Timestamp{Time: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)},
		Input:     profile.Profile{Income: 42000, Age: 28, Occupation: "Self_Employed", CityTier: "Tier_1"},
		Output:    prediction.Result{Amount: prediction.AmountOutput{RecommendedSavings: 900}},
	}
}

func TestCreateSendsFlattenedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/predictions", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var sent map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &sent))
		assert.Equal(t, 42000.0, sent["income"])
		assert.Equal(t, "Self_Employed", sent["occupation"])
		assert.Equal(t, 1.0, sent["occupation_self_employed"])
		assert.Equal(t, 1.0, sent["income_bracket_middle"])
		assert.NotContains(t, sent, "id")

		sent["id"] = 17
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]interface{}{sent})
	}))
	defer srv.Close()

	store := NewStore(srv.URL+"/", "anon", "")
	stored, err := store.Create(context.Background(), sampleRecord())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "17", stored.ID)
	assert.Equal(t, 42000.0, stored.Input.Income)
	assert.Equal(t, 900.0, stored.Output.Amount.RecommendedSavings)
}

func TestCreateWithoutEchoIsUnconfirmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	stored, err := NewStore(srv.URL, "anon", "predictions").Create(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestCreateErrors(t *testing.T) {
	for status, unavailable := range map[int]bool{http.StatusBadRequest: false, http.StatusBadGateway: true} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"nope"}`))
		}))

		_, err := NewStore(srv.URL, "anon", "").Create(context.Background(), sampleRecord())
		require.Error(t, err)
		assert.Equal(t, unavailable, errors.Is(err, errors.ErrUnavailable), "status %d", status)
		if !unavailable {
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, status, apiErr.StatusCode)
		}
		srv.Close()
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "timestamp.desc", r.URL.Query().Get("order"))
		w.Write([]byte(`[
			{"id": 2, "timestamp": "2025-05-02T10:00:00.5+00:00", "income": 2000, "occupation": "Student"},
			{"id": 1, "timestamp": "2025-05-01T10:00:00+00:00", "income": 1000, "occupation": "Retired"}
		]`))
	}))
	defer srv.Close()

	records, err := NewStore(srv.URL, "anon", "").List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[0].ID)
	assert.Equal(t, 2000.0, records[0].Input.Income)
	assert.Equal(t, "Retired", records[1].Input.Occupation)
}

func TestLatest(t *testing.T) {
	var empty bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if empty {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id": "abc", "timestamp": "2025-05-02T10:00:00Z", "income": 5}]`))
	}))
	defer srv.Close()

	store := NewStore(srv.URL, "anon", "")
	rec, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.ID)

	empty = true
	_, err = store.Latest(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteAndPing(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RawQuery)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := NewStore(srv.URL, "anon", "")
	require.NoError(t, store.Delete(context.Background(), "17"))
	require.NoError(t, store.Ping(context.Background()))
	assert.Error(t, store.Delete(context.Background(), ""))

	require.Len(t, calls, 2)
	assert.Equal(t, "DELETE id=eq.17", calls[0])
	assert.Equal(t, "GET limit=1&select=id", calls[1])
}

func TestContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewStore(srv.URL, "anon", "").Create(ctx, sampleRecord())
	assert.Error(t, err)
}
