package digest

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/linkstash-app/linkstash/internal/core/domain"
)

// channelBlock is the render model for one channel's section of a digest.
type channelBlock struct {
	ChannelName string
	Links       []linkSnippet
}

// linkSnippet is the render model for one link.
type linkSnippet struct {
	Title       string
	URL         string
	Image       string
	Description string
	SharedBy    string
}

var channelTmpl = template.Must(template.New("channel").Parse(`<h2>{{.ChannelName}}</h2>
{{range .Links}}<div class="link">
  <h3><a href="{{.URL}}">{{.Title}}</a></h3>
{{- if .Image}}
  <img src="{{.Image}}" alt="" width="320">
{{- end}}
{{- if .Description}}
  <p>{{.Description}}</p>
{{- end}}
  <p class="meta">shared by {{.SharedBy}}</p>
</div>
{{end}}`))

var shellTmpl = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body>
<h1>{{.Heading}}</h1>
{{.Body}}
<p class="footer">You are receiving this because your digest preference is set to {{.Frequency}}.</p>
</body>
</html>
`))

type shellData struct {
	Heading   string
	Body      template.HTML
	Frequency string
}

func renderChannelBlock(block channelBlock) (string, error) {
	var sb strings.Builder
	if err := channelTmpl.Execute(&sb, block); err != nil {
		return "", fmt.Errorf("render channel block: %w", err)
	}

	return sb.String(), nil
}

// wrapDocument wraps a rendered digest fragment in the fixed HTML document
// shell. The fragment is trusted: it was produced by this package's own
// escaping templates.
func wrapDocument(frequency domain.DigestFrequency, fragment string) (string, error) {
	var sb strings.Builder

	err := shellTmpl.Execute(&sb, shellData{
		Heading:   headingFor(frequency),
		Body:      template.HTML(fragment), //nolint:gosec // fragment comes from our own templates
		Frequency: string(frequency),
	})
	if err != nil {
		return "", fmt.Errorf("render digest shell: %w", err)
	}

	return sb.String(), nil
}

func headingFor(frequency domain.DigestFrequency) string {
	if frequency == domain.FrequencyWeekly {
		return "Your weekly links"
	}

	return "Your daily links"
}

// SubjectFor is the email subject line for a digest frequency.
func SubjectFor(frequency domain.DigestFrequency) string {
	if frequency == domain.FrequencyWeekly {
		return "Your Weekly Linkstash Digest"
	}

	return "Your Daily Linkstash Digest"
}
