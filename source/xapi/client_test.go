package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-analytics/utils"
)

var session = Session{AccessToken: "tok"}

func newTestClient(url string) *Client {
	c := NewClient(url, nil, 3, utils.NewNopLogger())
	c.retry.BaseDelay = time.Millisecond
	c.now = func() time.Time { return time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestFetchProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/x/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":{"id":"42","username":"builder","name":"B","public_metrics":{"followers_count":1234,"following_count":5,"tweet_count":99}}}`)
	}))
	defer srv.Close()

	p, err := newTestClient(srv.URL).FetchProfile(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "builder", p.Username)
	assert.Equal(t, int64(1234), p.Followers)
	assert.Equal(t, int64(99), p.Posts)
}

func TestFetchProfile_NoToken(t *testing.T) {
	_, err := newTestClient("http://unused").FetchProfile(context.Background(), Session{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFetchProfile_Unauthorized(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchProfile(context.Background(), session)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "401 is not retried")
}

func TestFetchPosts_PaginatesAndDedups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "7", q.Get("user_id"))
		assert.Equal(t, "100", q.Get("max_results"))
		assert.Equal(t, "2024-01-01T00:00:00Z", q.Get("start_time"))

		var body map[string]any
		switch q.Get("pagination_token") {
		case "":
			body = map[string]any{
				"data": []map[string]any{{"id": "1", "text": "a"}, {"id": "2", "text": "b"}},
				"meta": map[string]any{"next_token": "p2"},
			}
		case "p2":
			body = map[string]any{
				"data":       []map[string]any{{"id": "2", "text": "b"}, {"id": "3", "text": "c", "referenced_tweets": []map[string]string{{"type": "replied_to", "id": "1"}}}},
				"meta":       map[string]any{},
				"_rateLimit": map[string]any{"remaining": "100"},
			}
		default:
			t.Errorf("unexpected token %q", q.Get("pagination_token"))
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	posts, err := newTestClient(srv.URL).FetchPosts(context.Background(), session, "7", 30)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "3", posts[2].ID)
	assert.Equal(t, "replied_to", posts[2].ReferencedTweets[0].Type)
}

func TestFetchPosts_StopsOnLowRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"data":[{"id":"%d"}],"meta":{"next_token":"more"},"_rateLimit":{"remaining":"3","reset":"0"}}`, n)
	}))
	defer srv.Close()

	posts, err := newTestClient(srv.URL).FetchPosts(context.Background(), session, "7", 7)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchPosts_CapsAtMaxPosts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		data := make([]map[string]string, 0, PageSize)
		for i := 0; i < PageSize; i++ {
			data = append(data, map[string]string{"id": fmt.Sprintf("%d-%d", n, i)})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "meta": map[string]string{"next_token": "more"}})
	}))
	defer srv.Close()

	posts, err := newTestClient(srv.URL).FetchPosts(context.Background(), session, "7", 30)
	require.NoError(t, err)
	assert.Len(t, posts, MaxPosts)
	assert.Equal(t, int32(MaxPosts/PageSize), atomic.LoadInt32(&calls))
}

func TestFetchPosts_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"error":"X API request failed"}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"1"}],"meta":{}}`)
	}))
	defer srv.Close()

	posts, err := newTestClient(srv.URL).FetchPosts(context.Background(), session, "7", 30)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchPosts_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"Missing user_id parameter"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPosts(context.Background(), session, "7", 30)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "Missing user_id parameter", se.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchPosts_RequiresUserID(t *testing.T) {
	_, err := newTestClient("http://unused").FetchPosts(context.Background(), session, "", 30)
	assert.Error(t, err)
}
