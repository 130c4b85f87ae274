package mattermost

// Post is a single post as returned by the v4 REST API. Timestamps are
// Unix milliseconds.
type Post struct {
	ID        string        `json:"id"`
	CreateAt  int64         `json:"create_at"`
	UpdateAt  int64         `json:"update_at,omitempty"`
	EditAt    int64         `json:"edit_at,omitempty"`
	DeleteAt  int64         `json:"delete_at,omitempty"`
	UserID    string        `json:"user_id"`
	ChannelID string        `json:"channel_id"`
	RootID    string        `json:"root_id,omitempty"`
	Message   string        `json:"message"`
	Type      string        `json:"type,omitempty"`
	FileIDs   []string      `json:"file_ids,omitempty"`
	Metadata  *PostMetadata `json:"metadata,omitempty"`
}

type PostMetadata struct {
	Reactions []Reaction `json:"reactions,omitempty"`
}

type Reaction struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	EmojiName string `json:"emoji_name"`
	CreateAt  int64  `json:"create_at,omitempty"`
}

// PostList is one page of channel posts. Order holds the post IDs of the
// page; Posts maps every returned ID to its post.
type PostList struct {
	Order      []string         `json:"order"`
	Posts      map[string]*Post `json:"posts"`
	NextPostID string           `json:"next_post_id,omitempty"`
	PrevPostID string           `json:"prev_post_id,omitempty"`
}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
}

type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type,omitempty"`
}

type FileInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Extension string `json:"extension,omitempty"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type,omitempty"`
}
