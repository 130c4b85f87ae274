package mattermost

import (
	"fmt"
	"log"
	"sort"
	"time"
)

// Window bounds an export by post creation time. A zero Start or End
// leaves that side unbounded; All short-circuits both bounds.
type Window struct {
	Start time.Time
	End   time.Time
	All   bool
}

// Contains reports whether a post created at the given Unix-millisecond
// timestamp falls inside the window.
func (w Window) Contains(createAt int64) bool {
	if w.All {
		return true
	}
	t := time.UnixMilli(createAt)
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// FetchPosts retrieves every post in the channel that falls inside the
// window. Each page is requested in turn until the server returns an
// empty one, and every post is checked against the window individually;
// no ordering is assumed from the API. Results come back oldest first.
func (c *Client) FetchPosts(channelID string, window Window) ([]*Post, error) {
	collected := make(map[string]*Post)

	log.Printf("Fetching posts from channel %s (per_page: %d)", channelID, c.perPage)

	for page := 0; ; page++ {
		var list PostList
		path := fmt.Sprintf("/channels/%s/posts?page=%d&per_page=%d", channelID, page, c.perPage)
		if err := c.getJSON(path, &list); err != nil {
			return nil, fmt.Errorf("fetching posts page %d: %w", page, err)
		}

		if len(list.Posts) == 0 {
			break
		}

		if c.debug {
			log.Printf("Retrieved %d posts in page %d", len(list.Posts), page)
		}

		for id, post := range list.Posts {
			if post == nil {
				continue
			}
			if post.ID == "" {
				post.ID = id
			}
			if !window.Contains(post.CreateAt) {
				continue
			}
			// Pages can overlap when posts arrive mid-export; the map
			// keeps one copy per ID.
			collected[post.ID] = post
		}
	}

	posts := make([]*Post, 0, len(collected))
	for _, post := range collected {
		posts = append(posts, post)
	}

	// Sort posts by creation time (oldest first), ties broken by ID
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreateAt == posts[j].CreateAt {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreateAt < posts[j].CreateAt
	})

	log.Printf("Retrieved %d total posts from channel %s", len(posts), channelID)
	return posts, nil
}
