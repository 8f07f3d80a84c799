package reddit

import (
	"Opportune/internal/api/config"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingBody = `{"data":{"children":[
 {"data":{"id":"abc","title":"Need invoicing tool","selftext":"manual invoices take hours","author":"u1","subreddit":"freelance","permalink":"/r/freelance/abc","created_utc":1700000000,"score":12,"ups":14,"downs":2,"num_comments":3}},
 {"data":{"id":"def","title":"Other","selftext":"","author":"u2","subreddit":"freelance","created_utc":1700000100,"score":1}}
]}}`

func newTestServer(t *testing.T, tokenCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/r/freelance/new", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchNew(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := newTestServer(t, &tokenCalls)

	c := NewClient(config.RedditConfig{ClientID: "id", ClientSecret: "secret", UserAgent: "test/1.0"}).
		WithEndpoints(srv.URL+"/token", srv.URL)

	posts, err := c.FetchNew(context.Background(), "freelance", 5)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "abc", posts[0].ID)
	assert.Equal(t, "Need invoicing tool", posts[0].Title)
	assert.Equal(t, 14, posts[0].Ups)
	assert.Equal(t, int64(1700000000), posts[0].CreatedAt().Unix())

	_, err = c.FetchNew(context.Background(), "freelance", 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, tokenCalls.Load(), "token should be reused until expiry")
}

func TestFetchNew_NotConfigured(t *testing.T) {
	c := NewClient(config.RedditConfig{})
	_, err := c.FetchNew(context.Background(), "SaaS", 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFetchNew_BadCredentials(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := newTestServer(t, &tokenCalls)

	c := NewClient(config.RedditConfig{ClientID: "id", ClientSecret: "wrong"}).
		WithEndpoints(srv.URL+"/token", srv.URL)

	_, err := c.FetchNew(context.Background(), "freelance", 5)
	assert.Error(t, err)
}
