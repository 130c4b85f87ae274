package export

import (
	"html/template"
	"io"
)

const postsPageHTML = `<!DOCTYPE html>
<html><head><title>Mattermost Channel Posts Export</title>
<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.0/dist/css/bootstrap.min.css" rel="stylesheet">
</head><body>
<div class="container-flex text-center">
    <div class="row">
        <div class="col">
            <div class="row">
                <div class="col">
                    <h1>Mattermost Channel Posts Export</h1>
                </div>
            </div>
            <div class="row">
                <div class="col-10 offset-1 alert alert-secondary">
                    <h2>Posts in Channel {{.ChannelName}}</h2>
                    <h3>{{.DateRange}}</h3>
                </div>
            </div>
            <div class="row">
                <div class="col-10 offset-1 table-responsive">
                    <table class="table table-bordered table-sm">
                        <thead><tr class="table-dark"><th scope="col">ID</th><th scope="col">Message</th><th scope="col">Posted By</th><th scope="col">Date</th><th scope="col">Edited</th><th scope="col">Deleted</th><th scope="col">Attachments</th><th scope="col">Reactions</th><th scope="col">Thread</th></tr></thead><tbody class="table-group-divider">
{{- range .Rows}}
<tr class="{{.RowClass}}"><th scope="row" class="small">{{.ID}}</th><td style="word-wrap: break-word;max-width: 375px">{{.Message}}</td><td>{{.Author}}</td><td>{{.Date}}</td><td>{{.Edited}}</td><td>{{.Deleted}}</td><td style="word-wrap: break-word;max-width: 200px">{{range .Attachments}}<a href="{{.DownloadURL}}">{{.Name}}</a> ({{.Size}} bytes, {{.MimeType}}) {{end}}</td><td>{{.ReactionText}}</td><td>{{if .IsReply}}<span class="small">{{.RootID}}</span>{{end}}</td></tr>
{{- end}}
</tbody></table>
                </div>
            </div>
        </div>
    </div>
</div>
</body></html>
`

var postsPage = template.Must(template.New("posts").Parse(postsPageHTML))

type htmlPage struct {
	ChannelName string
	DateRange   string
	Rows        []htmlRow
}

type htmlRow struct {
	RowClass     string
	ID           string
	Message      string
	Author       string
	Date         string
	Edited       string
	Deleted      string
	Attachments  []Attachment
	ReactionText string
	IsReply      bool
	RootID       string
}

// WriteHTML emits the Bootstrap report page. Root posts render
// highlighted with their replies beneath them; message content is
// escaped by the template.
func WriteHTML(w io.Writer, channelName, dateRange string, records []Record) error {
	page := htmlPage{
		ChannelName: channelName,
		DateRange:   dateRange,
		Rows:        make([]htmlRow, 0, len(records)),
	}

	for _, rec := range threadOrder(records) {
		rowClass := "table-active"
		if rec.IsReply {
			rowClass = "table-light"
		}
		page.Rows = append(page.Rows, htmlRow{
			RowClass:     rowClass,
			ID:           rec.ID,
			Message:      rec.Message,
			Author:       rec.Author,
			Date:         displayTime(rec),
			Edited:       yesNo(rec.Edited),
			Deleted:      yesNo(rec.Deleted),
			Attachments:  rec.Attachments,
			ReactionText: reactionCell(rec.Reactions),
			IsReply:      rec.IsReply,
			RootID:       rec.RootID,
		})
	}

	return postsPage.Execute(w, page)
}
