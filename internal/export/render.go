package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

var reportColumns = []string{"ID", "Message", "Posted By", "Date", "Edited", "Deleted", "Attachments", "Reactions", "Thread"}

// WriteJSON emits the full record list as an indented JSON array in
// chronological order.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV emits one row per record, each root post followed by its
// replies.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportColumns); err != nil {
		return err
	}
	for _, rec := range threadOrder(records) {
		row := []string{
			rec.ID,
			rec.Message,
			rec.Author,
			displayTime(rec),
			yesNo(rec.Edited),
			yesNo(rec.Deleted),
			attachmentCell(rec.Attachments),
			reactionCell(rec.Reactions),
			threadCell(rec),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// threadOrder arranges records the way the tabular reports show them:
// each root post in chronological order followed by its replies. A
// reply whose root fell outside the window keeps its own chronological
// position.
func threadOrder(records []Record) []Record {
	rootKnown := make(map[string]bool)
	for _, rec := range records {
		if !rec.IsReply {
			rootKnown[rec.ID] = true
		}
	}

	replies := make(map[string][]Record)
	tops := make([]Record, 0, len(records))
	for _, rec := range records {
		if rec.IsReply && rootKnown[rec.RootID] {
			replies[rec.RootID] = append(replies[rec.RootID], rec)
			continue
		}
		tops = append(tops, rec)
	}

	ordered := make([]Record, 0, len(records))
	for _, top := range tops {
		ordered = append(ordered, top)
		ordered = append(ordered, replies[top.ID]...)
	}
	return ordered
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// displayTime renders the record timestamp the way the tabular reports
// show dates.
func displayTime(rec Record) string {
	t, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return rec.Timestamp
	}
	return t.Format("2006-01-02 15:04:05")
}

func attachmentCell(attachments []Attachment) string {
	parts := make([]string, 0, len(attachments))
	for _, a := range attachments {
		parts = append(parts, fmt.Sprintf("%s (%d bytes)", a.Name, a.Size))
	}
	return strings.Join(parts, ", ")
}

func reactionCell(groups []ReactionGroup) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("%s: %s", g.Emoji, strings.Join(g.Users, ", ")))
	}
	return strings.Join(parts, "; ")
}

func threadCell(rec Record) string {
	if rec.IsReply {
		return "Reply to " + rec.RootID
	}
	return "Original Post"
}
