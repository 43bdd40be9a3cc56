package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeQueryEncoding(t *testing.T) {
	assert.Equal(t, "project_id=proj1", Scope{Kind: "project", ProjectID: "proj1"}.query().Encode())
	assert.Equal(t, "project_id=none", Scope{Kind: "global"}.query().Encode())
	assert.Equal(t, "", Scope{Kind: "all"}.query().Encode())
}

func TestListMaterialsScopeOnWire(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":1,"items":[{"id":"m1","url":"/files/materials/a.png"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ms, err := c.ListMaterials(context.Background(), Scope{Kind: "global"})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "m1", ms[0].ID)
	assert.Equal(t, "project_id=none", gotQuery)

	_, err = c.ListMaterials(context.Background(), Scope{Kind: "all"})
	require.NoError(t, err)
	assert.Equal(t, "", gotQuery)
}

func TestGetMaterial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/materials/m1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","display_name":"Chart","note":"quarterly numbers","url":"/files/materials/a.png"}`))
	}))
	defer srv.Close()

	m, err := New(srv.URL).GetMaterial(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Chart", m.DisplayName)
	assert.Equal(t, "quarterly numbers", m.Note)
}

func TestErrorSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"delete failed"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteMaterial(context.Background(), "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete failed")
}

func TestErrorFallsBackToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream exploded`))
	}))
	defer srv.Close()

	err := New(srv.URL).DeleteMaterial(context.Background(), "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
	assert.Contains(t, err.Error(), "502")
}

func TestBulkDeleteEmptySetIsNoOp(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.BulkDelete(context.Background(), nil))
	assert.Equal(t, int64(0), calls.Load())

	require.NoError(t, c.BulkDelete(context.Background(), []string{"a", "b", "c"}))
	assert.Equal(t, int64(3), calls.Load())
}

func TestBulkDeleteFirstErrorWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/materials/bad" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).BulkDelete(context.Background(), []string{"good", "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMovePayloadUsesNoneSentinel(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"message":"moved"}`))
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL).MoveMaterial(context.Background(), "m1", ""))
	assert.Contains(t, gotBody, `"target_project_id":"none"`)
}
