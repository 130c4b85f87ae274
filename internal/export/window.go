package export

import (
	"fmt"
	"time"

	"github.com/maxwellpower/mm-channel-export/internal/mattermost"
)

const dateLayout = "2006-01-02"

// ParseWindow turns the configured date strings into a fetch window.
// Dates are calendar days in the given location; the end day is included
// through its last millisecond. When fetchAll is set both dates are
// ignored entirely.
func ParseWindow(startDate, endDate string, fetchAll bool, loc *time.Location) (mattermost.Window, error) {
	if fetchAll {
		return mattermost.Window{All: true}, nil
	}

	var window mattermost.Window

	if startDate != "" {
		start, err := time.ParseInLocation(dateLayout, startDate, loc)
		if err != nil {
			return mattermost.Window{}, fmt.Errorf("invalid START_DATE %q, expected YYYY-MM-DD", startDate)
		}
		window.Start = start
	}

	if endDate != "" {
		end, err := time.ParseInLocation(dateLayout, endDate, loc)
		if err != nil {
			return mattermost.Window{}, fmt.Errorf("invalid END_DATE %q, expected YYYY-MM-DD", endDate)
		}
		window.End = end.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	if !window.Start.IsZero() && !window.End.IsZero() && window.Start.After(window.End) {
		return mattermost.Window{}, fmt.Errorf("START_DATE %s is after END_DATE %s", startDate, endDate)
	}

	return window, nil
}
