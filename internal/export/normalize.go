package export

import (
	"log"
	"sort"
	"time"

	"github.com/maxwellpower/mm-channel-export/internal/mattermost"
)

// Record is one exported message in the shape the reports consume.
// CreateAt keeps the raw millisecond timestamp; Timestamp is the same
// instant rendered in the configured timezone.
type Record struct {
	ID          string          `json:"id"`
	CreateAt    int64           `json:"create_at"`
	Timestamp   string          `json:"timestamp"`
	Author      string          `json:"author"`
	Message     string          `json:"message"`
	Edited      bool            `json:"edited"`
	Deleted     bool            `json:"deleted"`
	Attachments []Attachment    `json:"attachments,omitempty"`
	Reactions   []ReactionGroup `json:"reactions,omitempty"`
	IsReply     bool            `json:"is_reply"`
	RootID      string          `json:"root_id,omitempty"`
}

type Attachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// ReactionGroup is one emoji with the users who reacted with it, both
// sorted for stable output.
type ReactionGroup struct {
	Emoji string   `json:"emoji"`
	Users []string `json:"users"`
}

// FileSource is the part of the API client the normalizer needs for
// attachment metadata.
type FileSource interface {
	GetFileInfo(fileID string) (*mattermost.FileInfo, error)
	FileURL(fileID string) string
}

// Normalizer turns raw posts into records. The resolver it carries is
// scoped to the same run.
type Normalizer struct {
	resolver *Resolver
	files    FileSource
	location *time.Location
}

func NewNormalizer(resolver *Resolver, files FileSource, location *time.Location) *Normalizer {
	return &Normalizer{
		resolver: resolver,
		files:    files,
		location: location,
	}
}

// Normalize maps one post to its record.
func (n *Normalizer) Normalize(post *mattermost.Post) Record {
	rec := Record{
		ID:        post.ID,
		CreateAt:  post.CreateAt,
		Timestamp: time.UnixMilli(post.CreateAt).In(n.location).Format(time.RFC3339),
		Author:    n.resolver.Username(post.UserID),
		Message:   post.Message,
		Edited:    post.EditAt > 0,
		Deleted:   post.DeleteAt > 0,
		IsReply:   post.RootID != "" && post.RootID != post.ID,
		RootID:    post.RootID,
	}

	rec.Attachments = n.attachments(post.FileIDs)
	if post.Metadata != nil {
		rec.Reactions = groupReactions(post.Metadata.Reactions, n.resolver)
	}

	return rec
}

func (n *Normalizer) attachments(fileIDs []string) []Attachment {
	if len(fileIDs) == 0 {
		return nil
	}

	attachments := make([]Attachment, 0, len(fileIDs))
	for _, id := range fileIDs {
		info, err := n.files.GetFileInfo(id)
		if err != nil {
			// Keep a stub entry when the file lookup fails
			log.Printf("Could not fetch file info for %s: %v", id, err)
			attachments = append(attachments, Attachment{ID: id, Name: "attachment unavailable"})
			continue
		}
		attachments = append(attachments, Attachment{
			ID:          id,
			Name:        info.Name,
			Size:        info.Size,
			MimeType:    info.MimeType,
			DownloadURL: n.files.FileURL(id),
		})
	}
	return attachments
}

// groupReactions folds raw reactions into one group per emoji with the
// reacting users resolved to usernames. Groups sort by emoji name and
// users sort within each group.
func groupReactions(reactions []mattermost.Reaction, resolver *Resolver) []ReactionGroup {
	if len(reactions) == 0 {
		return nil
	}

	byEmoji := make(map[string][]string)
	for _, reaction := range reactions {
		byEmoji[reaction.EmojiName] = append(byEmoji[reaction.EmojiName], resolver.Username(reaction.UserID))
	}

	emojis := make([]string, 0, len(byEmoji))
	for emoji := range byEmoji {
		emojis = append(emojis, emoji)
	}
	sort.Strings(emojis)

	groups := make([]ReactionGroup, 0, len(emojis))
	for _, emoji := range emojis {
		users := byEmoji[emoji]
		sort.Strings(users)
		groups = append(groups, ReactionGroup{Emoji: emoji, Users: users})
	}
	return groups
}
