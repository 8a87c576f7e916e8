// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-flock-keeper/internal/config"
	"github.com/MKhiriev/go-flock-keeper/internal/logger"
	"github.com/MKhiriev/go-flock-keeper/internal/utils"
	"github.com/MKhiriev/go-flock-keeper/models"
)

const (
	testSignKey = "test-sign-key"
	testIssuer  = "test-issuer"
)

// newTestStore creates an httpRemoteStore pointed at the test server.
func newTestStore(t *testing.T, serverURL string) *httpRemoteStore {
	t.Helper()
	appCfg := config.ClientApp{
		TokenSignKey:   testSignKey,
		TokenIssuer:    testIssuer,
		TokenDuration:  time.Hour,
		InstallationID: "installation-1",
	}

	s, err := NewHTTPRemoteStore(config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: 2 * time.Second}, appCfg, logger.Nop())
	require.NoError(t, err)
	return s.(*httpRemoteStore)
}

// requireBearer fails the test unless r carries a valid token for installation-1.
func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	raw, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
	require.NoError(t, err)
	token, err := utils.ValidateAndParseJWTToken(raw, testSignKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "installation-1", token.Principal)
}

// ── constructor ─────────────────────────────────────────────────────────────

func TestNewHTTPRemoteStore_InvalidAddress(t *testing.T) {
	for _, addr := range []string{"", "   ", "http://"} {
		_, err := NewHTTPRemoteStore(config.ClientAdapter{HTTPAddress: addr}, config.ClientApp{}, logger.Nop())
		assert.ErrorIs(t, err, ErrInvalidAddress, addr)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := normalizeBaseURL("localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", got)

	got, err = normalizeBaseURL("https://records.example.org")
	require.NoError(t, err)
	assert.Equal(t, "https://records.example.org", got)
}

// ── DeleteByKey ─────────────────────────────────────────────────────────────

func TestDeleteByKey_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/records/attendance", r.URL.Path)
		assert.Equal(t, "2025-04-20", r.URL.Query().Get("date"))
		assert.Equal(t, "Sunday Morning Service", r.URL.Query().Get("service"))
		requireBearer(t, r)

		_, _ = utils.WriteJSON(w, models.DeleteResponse{Affected: 3}, http.StatusOK)
	}))
	defer srv.Close()

	s := newTestStore(t, srv.URL)
	n, err := s.DeleteByKey(context.Background(), "attendance", models.RecordFilter{Date: "2025-04-20", Service: "Sunday Morning Service"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDeleteByKey_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestStore(t, srv.URL).DeleteByKey(context.Background(), "attendance", models.RecordFilter{Date: "2025-04-20"})

	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

// ── BulkInsert ──────────────────────────────────────────────────────────────

func TestBulkInsert_Success(t *testing.T) {
	records := []models.RemoteRecord{
		{ID: "a", Date: "2025-04-20", Service: "S", Payload: json.RawMessage(`{"status":"present"}`)},
		{ID: "b", Date: "2025-04-20", Service: "S", Payload: json.RawMessage(`{"status":"absent"}`)},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/records/attendance", r.URL.Path)
		requireBearer(t, r)

		var got []models.RemoteRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.JSONEq(t, `{"status":"absent"}`, string(got[1].Payload))

		_, _ = utils.WriteJSON(w, models.BulkInsertResponse{InsertedIDs: []string{"a", "b"}}, http.StatusCreated)
	}))
	defer srv.Close()

	ids, err := newTestStore(t, srv.URL).BulkInsert(context.Background(), "attendance", records)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestBulkInsert_EmptyDoesNotCallServer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	ids, err := newTestStore(t, srv.URL).BulkInsert(context.Background(), "attendance", nil)

	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, calls.Load())
}

func TestBulkInsert_BadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("payload must be a JSON document"))
	}))
	defer srv.Close()

	_, err := newTestStore(t, srv.URL).BulkInsert(context.Background(), "members", []models.RemoteRecord{{ID: "1"}})

	assert.ErrorIs(t, err, ErrBadRequest)
	assert.False(t, IsTransient(err))
}

func TestBulkInsert_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := newTestStore(t, srv.URL).BulkInsert(context.Background(), "members", []models.RemoteRecord{{ID: "1"}})

	assert.ErrorIs(t, err, ErrDecodeResponse)
}

// ── DeletePoint ─────────────────────────────────────────────────────────────

func TestDeletePoint_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/records/members/42", r.URL.Path)
		requireBearer(t, r)
		_, _ = utils.WriteJSON(w, models.DeleteResponse{Affected: 1}, http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestStore(t, srv.URL).DeletePoint(context.Background(), "members", "42"))
}

func TestDeletePoint_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestStore(t, srv.URL).DeletePoint(context.Background(), "members", "42")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── QueryAll ────────────────────────────────────────────────────────────────

func TestQueryAll_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, []string{"1", "2"}, r.URL.Query()["id"])
		requireBearer(t, r)

		_, _ = utils.WriteJSON(w, models.RecordsResponse{
			Records: []models.RemoteRecord{{ID: "1", Collection: "members", Payload: json.RawMessage(`{}`)}},
			Length:  1,
		}, http.StatusOK)
	}))
	defer srv.Close()

	got, err := newTestStore(t, srv.URL).QueryAll(context.Background(), "members", models.RecordFilter{IDs: []string{"1", "2"}})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestQueryAll_NullRecordsBecomeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"records":null,"length":0}`))
	}))
	defer srv.Close()

	got, err := newTestStore(t, srv.URL).QueryAll(context.Background(), "members", models.RecordFilter{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ── Ping ────────────────────────────────────────────────────────────────────

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))

	s := newTestStore(t, srv.URL)
	require.NoError(t, s.Ping(context.Background()))

	srv.Close()
	err := s.Ping(context.Background())
	assert.True(t, IsTransient(err))
}

// ── token ───────────────────────────────────────────────────────────────────

func TestBearer_IsCachedUntilNearExpiry(t *testing.T) {
	s := newTestStore(t, "http://localhost")

	first, err := s.bearer()
	require.NoError(t, err)
	second, err := s.bearer()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBearer_MissingSignKeyIsUnauthorized(t *testing.T) {
	store, err := NewHTTPRemoteStore(config.ClientAdapter{HTTPAddress: "localhost:1"}, config.ClientApp{}, logger.Nop())
	require.NoError(t, err)

	_, err = store.QueryAll(context.Background(), "members", models.RecordFilter{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

// ── mapHTTPError ────────────────────────────────────────────────────────────

func TestMapHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusTooManyRequests, ErrTransient},
		{http.StatusInternalServerError, ErrTransient},
		{http.StatusBadGateway, ErrTransient},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newTestStore(t, srv.URL).Ping(context.Background())
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
