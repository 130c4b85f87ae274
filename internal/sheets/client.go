package sheets

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Client struct {
	service *sheets.Service
}

func NewClient(credentialsJSON string) (*Client, error) {
	ctx := context.Background()

	var credentialsData []byte
	var err error

	// Check if credentialsJSON is a file path or JSON content
	// File path criteria: shorter than 512 chars, ends with .json, and doesn't start with {
	isFilePath := len(credentialsJSON) < 512 &&
		strings.HasSuffix(credentialsJSON, ".json") &&
		!strings.HasPrefix(strings.TrimSpace(credentialsJSON), "{")

	if isFilePath {
		credentialsData, err = os.ReadFile(credentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file '%s': %v", credentialsJSON, err)
		}
		log.Printf("Read credentials from file: %s (%d bytes)", credentialsJSON, len(credentialsData))
	} else {
		credentialsData = []byte(credentialsJSON)
		log.Printf("Using credentials as JSON content (%d bytes)", len(credentialsData))
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credentialsData))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %v", err)
	}

	return &Client{service: service}, nil
}

// EnsureChannelSheet finds or creates the sheet for a channel and
// returns its name. Sheets are named "channelName-channelID" so a
// renamed channel keeps its sheet: any sheet whose title ends with the
// channel ID is renamed instead of duplicated. New sheets get the given
// header row.
func (c *Client) EnsureChannelSheet(spreadsheetID, channelID, channelName string, header []string) (string, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Do()
	if err != nil {
		return "", fmt.Errorf("unable to get spreadsheet: %v", err)
	}

	expectedSheetName := fmt.Sprintf("%s-%s", channelName, channelID)

	for _, sheet := range spreadsheet.Sheets {
		title := sheet.Properties.Title
		if !strings.HasSuffix(title, "-"+channelID) {
			continue
		}
		if title == expectedSheetName {
			return expectedSheetName, nil
		}

		log.Printf("Updating sheet name from '%s' to '%s'", title, expectedSheetName)
		renameRequest := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{
				{
					UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
						Properties: &sheets.SheetProperties{
							SheetId: sheet.Properties.SheetId,
							Title:   expectedSheetName,
						},
						Fields: "title",
					},
				},
			},
		}
		if _, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, renameRequest).Do(); err != nil {
			return "", fmt.Errorf("unable to rename sheet: %v", err)
		}
		return expectedSheetName, nil
	}

	log.Printf("Creating new sheet: '%s'", expectedSheetName)
	createRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{
						Title: expectedSheetName,
					},
				},
			},
		},
	}
	if _, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, createRequest).Do(); err != nil {
		return "", fmt.Errorf("unable to create sheet: %v", err)
	}

	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	headerRange := &sheets.ValueRange{
		Values: [][]interface{}{headerCells},
	}
	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("%s!A1:%s1", expectedSheetName, columnLetter(len(header))),
		headerRange,
	).ValueInputOption("RAW").Do()
	if err != nil {
		log.Printf("Warning: unable to add headers to new sheet: %v", err)
	}

	return expectedSheetName, nil
}

// AppendRows appends the given rows, skipping any whose first cell (the
// post ID) already appears in column A. Returns the number of rows
// actually appended.
func (c *Client) AppendRows(spreadsheetID, sheetName string, rows [][]interface{}) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	existing, err := c.existingIDs(spreadsheetID, sheetName)
	if err != nil {
		log.Printf("Warning: could not check for duplicates: %v", err)
		existing = map[string]bool{}
	}

	newRows := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			if id, ok := row[0].(string); ok && existing[id] {
				continue
			}
		}
		newRows = append(newRows, row)
	}

	if len(newRows) == 0 {
		log.Printf("All %d rows already exist in sheet %s, nothing to append", len(rows), sheetName)
		return 0, nil
	}

	width := len(rows[0])
	valueRange := &sheets.ValueRange{Values: newRows}
	_, err = c.service.Spreadsheets.Values.Append(
		spreadsheetID,
		fmt.Sprintf("%s!A:%s", sheetName, columnLetter(width)),
		valueRange,
	).ValueInputOption("RAW").Do()
	if err != nil {
		return 0, fmt.Errorf("unable to write data to sheet: %v", err)
	}

	return len(newRows), nil
}

// existingIDs reads column A of the sheet into a set.
func (c *Client) existingIDs(spreadsheetID, sheetName string) (map[string]bool, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, sheetName+"!A:A").Do()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) > 0 {
			if id, ok := row[0].(string); ok {
				ids[id] = true
			}
		}
	}
	return ids, nil
}

// columnLetter returns the column letter for a 1-based index. Only
// single-letter columns are needed here.
func columnLetter(n int) string {
	if n < 1 {
		n = 1
	}
	if n > 26 {
		n = 26
	}
	return string(rune('A' + n - 1))
}
