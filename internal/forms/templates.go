package forms

import (
	"bytes"
	"html/template"

	"github.com/poofware/submission-service/internal/utils"
	"github.com/poofware/submission-service/internal/validation"
)

// Shared shell for the internal notification emails.
const adminLayoutHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; line-height: 1.5; color: #1f2937; }
  .container { border: 1px solid #d1d5db; border-radius: 6px; padding: 20px; max-width: 640px; }
  h2 { margin-top: 0; color: #1e3a5f; }
  ul { list-style: none; padding: 0; }
  li { margin-bottom: 6px; }
  strong { color: #000; }
  .details { white-space: pre-wrap; background: #f3f4f6; padding: 12px; border-radius: 4px; }
</style>
</head>
<body>
  <div class="container">
    <h2>{{.Heading}}</h2>
    {{template "content" .}}
  </div>
</body>
</html>`

// Shared shell for the acknowledgement emails sent to submitters.
const ackLayoutHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Heading}}</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f8f9fa; margin: 0; padding: 20px; }
  .container { max-width: 560px; margin: auto; background: #ffffff; border: 1px solid #e9ecef; border-radius: 8px; overflow: hidden; }
  .header { background-color: #1e3a5f; color: white; padding: 20px; text-align: center; }
  .header h1 { margin: 0; font-size: 22px; }
  .content { padding: 30px; text-align: left; }
  .footer { background-color: #f8f9fa; padding: 20px; text-align: center; font-size: 12px; color: #6c757d; }
  p { margin-bottom: 1em; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Heading}}</h1>
    </div>
    <div class="content">
      {{template "content" .}}
    </div>
    <div class="footer">
      {{.Organization}}. Please do not reply to this automated message.
    </div>
  </div>
</body>
</html>`

var (
	adminLayout = template.Must(template.New("layout").Option("missingkey=zero").Parse(adminLayoutHTML))
	ackLayout   = template.Must(template.New("layout").Option("missingkey=zero").Parse(ackLayoutHTML))
)

// page is one parsed email: a layout plus its "content" block.
type page struct {
	tmpl *template.Template
}

func mustPage(layout *template.Template, content string) page {
	t := template.Must(layout.Clone())
	template.Must(t.New("content").Parse(content))
	return page{tmpl: t}
}

// pageData is what every content block sees. R holds the validated record.
type pageData struct {
	Heading      string
	Organization string
	R            validation.Record
	Extra        map[string]any
}

func (p page) render(heading string, rec validation.Record, extra map[string]any) (string, error) {
	var buf bytes.Buffer
	err := p.tmpl.ExecuteTemplate(&buf, "layout", pageData{
		Heading:      heading,
		Organization: utils.OrganizationName,
		R:            rec,
		Extra:        extra,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderPair renders the admin and acknowledgement pages of one form.
func renderPair(admin, ack page, adminHeading, ackHeading string, rec validation.Record, extra map[string]any) (Rendered, error) {
	adminHTML, err := admin.render(adminHeading, rec, extra)
	if err != nil {
		return Rendered{}, err
	}
	ackHTML, err := ack.render(ackHeading, rec, extra)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{AdminHTML: adminHTML, AckHTML: ackHTML}, nil
}
