package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(Config{BaseURL: srv.URL, TimeoutSeconds: 2, UserAgent: "test-agent"})
	return c, srv
}

func TestInstantAnswerForDecodesPayload(t *testing.T) {
	var gotQuery, gotUA string
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`{"AbstractText":"Go is a language.","AbstractSource":"Wikipedia","RelatedTopics":[{"Text":"Golang"}]}`))
	})
	defer srv.Close()

	ans, err := c.InstantAnswerFor(context.Background(), "go language")
	require.NoError(t, err)

	assert.Equal(t, "go language", gotQuery)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "Go is a language.", ans.AbstractText)
	assert.Equal(t, "Wikipedia", ans.AbstractSource)
	require.Len(t, ans.RelatedTopics, 1)
	assert.Equal(t, "Golang", ans.RelatedTopics[0].Text)
}

func TestInstantAnswerForBadPayloadIsDecodeError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})
	defer srv.Close()

	_, err := c.InstantAnswerFor(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestInstantAnswerForNon200(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer srv.Close()

	_, err := c.InstantAnswerFor(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "503")
}

func TestInstantAnswerForTransportError(t *testing.T) {
	c, srv := newTestClient(func(http.ResponseWriter, *http.Request) {})
	srv.Close() // refuse all connections

	_, err := c.InstantAnswerFor(context.Background(), "anything")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestSearchURLEscapesQuery(t *testing.T) {
	assert.Equal(t, "https://duckduckgo.com/?q=best+pizza+recipe", SearchURL("best pizza recipe"))
}
