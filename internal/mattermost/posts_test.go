package mattermost

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustWriteJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encoding response: %v", err)
	}
}

func pageOf(posts ...*Post) PostList {
	list := PostList{Order: []string{}, Posts: map[string]*Post{}}
	for _, p := range posts {
		list.Order = append(list.Order, p.ID)
		list.Posts[p.ID] = p
	}
	return list
}

// postsServer serves one PostList per page index and empty pages beyond.
func postsServer(t *testing.T, pages []PostList, requestedPages *[]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if requestedPages != nil {
			*requestedPages = append(*requestedPages, page)
		}
		idx, err := strconv.Atoi(page)
		if err != nil {
			t.Errorf("bad page parameter %q", page)
		}
		if idx < len(pages) {
			mustWriteJSON(t, w, pages[idx])
			return
		}
		mustWriteJSON(t, w, pageOf())
	}))
}

func TestFetchPostsFiltersByWindow(t *testing.T) {
	june1 := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	june2 := time.Date(2023, 6, 2, 10, 0, 0, 0, time.UTC)
	june3 := time.Date(2023, 6, 3, 10, 0, 0, 0, time.UTC)

	pages := []PostList{pageOf(
		&Post{ID: "p1", CreateAt: june1.UnixMilli(), Message: "first"},
		&Post{ID: "p2", CreateAt: june2.UnixMilli(), Message: "second"},
		&Post{ID: "p3", CreateAt: june3.UnixMilli(), Message: "too late"},
	)}

	var requested []string
	server := postsServer(t, pages, &requested)
	defer server.Close()

	client, _ := newTestClient(server.URL)
	window := Window{
		Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 6, 2, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}

	posts, err := client.FetchPosts("c1", window)

	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, "p2", posts[1].ID)
	assert.Equal(t, []string{"0", "1"}, requested, "pagination stops at the first empty page")
}

func TestFetchPostsDeduplicatesAcrossPages(t *testing.T) {
	posts := []*Post{
		{ID: "a", CreateAt: 1000},
		{ID: "b", CreateAt: 2000},
		{ID: "c", CreateAt: 3000},
	}
	// Post b appears on both pages, as happens when new posts shift
	// page boundaries mid-export.
	pages := []PostList{
		pageOf(posts[0], posts[1]),
		pageOf(posts[1], posts[2]),
	}

	server := postsServer(t, pages, nil)
	defer server.Close()

	client, _ := newTestClient(server.URL)
	got, err := client.FetchPosts("c1", Window{All: true})

	assert.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFetchPostsSortsOldestFirst(t *testing.T) {
	pages := []PostList{pageOf(
		&Post{ID: "newest", CreateAt: 3000},
		&Post{ID: "middle", CreateAt: 2000},
		&Post{ID: "oldest", CreateAt: 1000},
	)}

	server := postsServer(t, pages, nil)
	defer server.Close()

	client, _ := newTestClient(server.URL)
	got, err := client.FetchPosts("c1", Window{All: true})

	assert.NoError(t, err)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"oldest", "middle", "newest"}, ids)
}

func TestFetchPostsSortTieBreaksOnID(t *testing.T) {
	pages := []PostList{pageOf(
		&Post{ID: "zzz", CreateAt: 1000},
		&Post{ID: "aaa", CreateAt: 1000},
	)}

	server := postsServer(t, pages, nil)
	defer server.Close()

	client, _ := newTestClient(server.URL)
	got, err := client.FetchPosts("c1", Window{All: true})

	assert.NoError(t, err)
	assert.Equal(t, "aaa", got[0].ID)
	assert.Equal(t, "zzz", got[1].ID)
}

func TestFetchPostsEmptyChannel(t *testing.T) {
	var requested []string
	server := postsServer(t, nil, &requested)
	defer server.Close()

	client, _ := newTestClient(server.URL)
	got, err := client.FetchPosts("c1", Window{All: true})

	assert.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{"0"}, requested)
}

func TestFetchPostsUnauthorized(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"id":"api.context.session_expired.app_error","message":"Invalid or expired session, please login again.","status_code":401}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	got, err := client.FetchPosts("c1", Window{All: true})

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, requests, "auth failures must not be retried")
}

func TestFetchPostsPageErrorAborts(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			mustWriteJSON(t, w, pageOf(&Post{ID: "p1", CreateAt: 1000}))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)
	got, err := client.FetchPosts("c1", Window{All: true})

	assert.Error(t, err)
	assert.Nil(t, got, "a failed page must not yield a partial export")
	assert.Contains(t, err.Error(), "page 1")
}

func TestFetchPostsAllIgnoresBounds(t *testing.T) {
	pages := []PostList{pageOf(
		&Post{ID: "p1", CreateAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
		&Post{ID: "p2", CreateAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
	)}

	server := postsServer(t, pages, nil)
	defer server.Close()

	client, _ := newTestClient(server.URL)
	window := Window{
		Start: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC),
		All:   true,
	}

	got, err := client.FetchPosts("c1", window)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestWindowContains(t *testing.T) {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 6, 2, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	w := Window{Start: start, End: end}

	assert.True(t, w.Contains(start.UnixMilli()), "start boundary is inclusive")
	assert.True(t, w.Contains(end.UnixMilli()), "end boundary is inclusive")
	assert.False(t, w.Contains(start.UnixMilli()-1))
	assert.False(t, w.Contains(end.UnixMilli()+1))

	unbounded := Window{}
	assert.True(t, unbounded.Contains(0))
	assert.True(t, unbounded.Contains(time.Now().UnixMilli()))

	noStart := Window{End: end}
	assert.True(t, noStart.Contains(0), "absent start reaches back to the epoch")
	assert.False(t, noStart.Contains(end.UnixMilli()+1))

	noEnd := Window{Start: start}
	assert.True(t, noEnd.Contains(start.UnixMilli()+1))
	assert.False(t, noEnd.Contains(start.UnixMilli()-1))
}
