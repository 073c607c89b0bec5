// Package notify renders IP change notices and delivers them over SMTP.
package notify

import (
	"html/template"
	"strings"
	"time"

	"ipalert/internal/models"
)

// Subject is the fixed subject line of every alert
const Subject = "New IP Alert"

// Message is a rendered notification
type Message struct {
	FromName string
	Subject  string
	HTML     string
}

var bodyTemplate = template.Must(template.New("body").Parse(
	`<h2>The IP address has changed</h2>` +
		`<p>The IP address of your host <strong>{{.Current.Hostname}}</strong> is <strong>{{.Current.IP}}</strong> now.</p>` +
		`{{if .Previous}}` +
		`<p>The expired IP address of <strong>{{.Previous.Hostname}}</strong> was <strong>{{.Previous.IP}}</strong>, recorded at <strong>{{.PreviousTime}}</strong>.</p>` +
		`{{else}}` +
		`<p>This is the initial mail.</p>` +
		`{{end}}` +
		`<br /><hr /><br />Powered by ipalert`,
))

// Compose builds the notification for a change from previous to current.
// previous is nil on initial execution.
func Compose(current models.HostRecord, previous *models.HostRecord) (*Message, error) {
	data := struct {
		Current      models.HostRecord
		Previous     *models.HostRecord
		PreviousTime string
	}{
		Current:  current,
		Previous: previous,
	}
	if previous != nil {
		data.PreviousTime = FormatTime(previous.Timestamp)
	}

	var b strings.Builder
	if err := bodyTemplate.Execute(&b, data); err != nil {
		return nil, err
	}

	return &Message{
		FromName: current.Hostname,
		Subject:  Subject,
		HTML:     b.String(),
	}, nil
}

// FormatTime renders t in local time the way asctime does
func FormatTime(t time.Time) string {
	return t.Local().Format(time.ANSIC)
}
