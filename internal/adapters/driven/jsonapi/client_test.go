package jsonapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]})
	}))
	defer server.Close()

	c := New("test", server.URL+"/v1/", time.Second, errDown)
	c.Header.Set("Authorization", "Bearer k")

	var out map[string]string
	require.NoError(t, c.Post(context.Background(), "/echo", map[string]string{"say": "hi"}, &out))
	assert.Equal(t, "hi", out["echo"])
}

func TestClient_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	err := New("test", server.URL, time.Second, errDown).Get(context.Background(), "/x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDown)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(err, http.StatusInternalServerError))
	assert.Equal(t, "test: status 404: model not found", err.Error())
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := New("test", url, time.Second, errDown).Get(context.Background(), "/", nil)
	assert.ErrorIs(t, err, errDown)
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New("test", server.URL, time.Second, errDown).Get(ctx, "/", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errDown)
}

func TestClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	var out map[string]any
	err := New("test", server.URL, time.Second, errDown).Get(context.Background(), "/", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errDown)
}

func TestFloat32s(t *testing.T) {
	assert.Equal(t, []float32{0.5, -1}, Float32s([]float64{0.5, -1}))
	assert.Empty(t, Float32s(nil))
}
