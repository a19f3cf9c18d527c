package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/summary", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "", r.URL.Query().Get("json"))
		assert.True(t, r.URL.Query().Has("json"))
		w.Write([]byte(`{"value": 7}`))
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL), WithBearerToken("secret"), WithProviderName("test"))
	require.NoError(t, err)

	var out struct {
		Value int `json:"value"`
	}
	_, err = c.NewRequest().SetQueryParam("json", "").SetResult(&out).Get(context.Background(), "/2/summary")
	require.NoError(t, err)
	assert.Equal(t, 7, out.Value)
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("nope"))
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	require.NoError(t, err)

	resp, err := c.NewRequest().Get(context.Background(), "anything")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "nope", string(resp.Body()))
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c, err := NewInstrumentedClient(WithBaseURL(srv.URL))
	require.NoError(t, err)

	var out map[string]any
	_, err = c.NewRequest().SetResult(&out).Get(context.Background(), "/")
	assert.Error(t, err)
}

func TestBuildURL(t *testing.T) {
	c := &InstrumentedClient{baseURL: "http://explorer/"}
	r := c.NewRequest().(*requestBuilder)
	r.SetQueryParam("json", "")

	assert.Equal(t, "http://explorer/blocks/10?json=", r.buildURL("/blocks/10"))
	assert.Equal(t, "http://other/x?json=", r.buildURL("http://other/x"))
}
