package export

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/maxwellpower/mm-channel-export/internal/config"
	"github.com/maxwellpower/mm-channel-export/internal/mattermost"
	"github.com/maxwellpower/mm-channel-export/internal/sheets"
)

const (
	htmlFileName = "channel_posts.html"
	csvFileName  = "channel_posts.csv"
	jsonFileName = "channel_posts.json"
)

// Run performs one full export: fetch, normalize, render. Report files
// are only written once the whole record set is assembled, so a failed
// run leaves no partial reports behind.
func Run(cfg *config.Config, client *mattermost.Client) error {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %v", cfg.Timezone, err)
	}

	window, err := ParseWindow(cfg.StartDate, cfg.EndDate, cfg.FetchAll, location)
	if err != nil {
		return err
	}

	channel, err := client.GetChannel(cfg.ChannelID)
	if err != nil {
		return fmt.Errorf("fetching channel: %w", err)
	}
	channelName := channel.DisplayName
	if channelName == "" {
		channelName = channel.Name
	}
	log.Printf("Exporting channel %q (%s)", channelName, channel.ID)

	posts, err := client.FetchPosts(cfg.ChannelID, window)
	if err != nil {
		return err
	}

	resolver := NewResolver(client)
	normalizer := NewNormalizer(resolver, client, location)

	records := make([]Record, 0, len(posts))
	for _, post := range posts {
		records = append(records, normalizer.Normalize(post))
	}

	if len(records) == 0 {
		log.Printf("No posts matched the export window")
	}

	dateRange := describeWindow(cfg)
	if err := writeReports(cfg.OutputDir, channelName, dateRange, records); err != nil {
		return err
	}
	log.Println("Output files have been generated successfully.")

	if cfg.SheetsEnabled() {
		if err := appendToSheet(cfg, channel, records); err != nil {
			return fmt.Errorf("appending to Google Sheets: %w", err)
		}
	}

	return nil
}

// describeWindow builds the report subtitle for the chosen window.
func describeWindow(cfg *config.Config) string {
	if cfg.FetchAll {
		return "For all time"
	}
	switch {
	case cfg.StartDate != "" && cfg.EndDate != "":
		return fmt.Sprintf("From %s to %s", cfg.StartDate, cfg.EndDate)
	case cfg.StartDate != "":
		return fmt.Sprintf("From %s", cfg.StartDate)
	case cfg.EndDate != "":
		return fmt.Sprintf("Up to %s", cfg.EndDate)
	default:
		return "For all time"
	}
}

// writeReports renders all three report files under dir.
func writeReports(dir, channelName, dateRange string, records []Record) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := writeFile(filepath.Join(dir, htmlFileName), func(w io.Writer) error {
		return WriteHTML(w, channelName, dateRange, records)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, csvFileName), func(w io.Writer) error {
		return WriteCSV(w, records)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, jsonFileName), func(w io.Writer) error {
		return WriteJSON(w, records)
	})
}

// writeFile renders into memory first so a failed render leaves no
// half-written report on disk.
func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}

// appendToSheet mirrors the report rows into the configured spreadsheet.
func appendToSheet(cfg *config.Config, channel *mattermost.Channel, records []Record) error {
	client, err := sheets.NewClient(cfg.GoogleSheetsCredentials)
	if err != nil {
		return err
	}

	sheetName, err := client.EnsureChannelSheet(cfg.SpreadsheetID, channel.ID, channel.Name, reportColumns)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(records))
	for _, rec := range threadOrder(records) {
		rows = append(rows, []interface{}{
			rec.ID,
			rec.Message,
			rec.Author,
			displayTime(rec),
			yesNo(rec.Edited),
			yesNo(rec.Deleted),
			attachmentCell(rec.Attachments),
			reactionCell(rec.Reactions),
			threadCell(rec),
		})
	}

	appended, err := client.AppendRows(cfg.SpreadsheetID, sheetName, rows)
	if err != nil {
		return err
	}
	log.Printf("Appended %d rows to sheet %s", appended, sheetName)
	return nil
}
