package notify

import (
	"html/template"
	"strings"
)

const (
	tmplNewMessage = "new_message"
	tmplReply      = "reply"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`
{{define "new_message"}}<html><body>
<h3>New inquiry from a user</h3>
<p><b>From:</b> {{.From}}</p>
<p><b>Subject:</b> {{.Subject}}</p>
<p><b>Message:</b></p>
<p>{{range $i, $l := lines .Body}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
</body></html>{{end}}

{{define "reply"}}<html><body>
<h3>Reply to your inquiry</h3>
<p><b>Subject:</b> {{.Subject}}</p>
<p><b>Reply:</b></p>
<p>{{range $i, $l := lines .Reply}}{{if $i}}<br>{{end}}{{$l}}{{end}}</p>
<hr>
<p style="color:#888;font-size:12px">This message was sent automatically in response to your inquiry.</p>
</body></html>{{end}}
`))

type newMessageData struct {
	From    string
	Subject string
	Body    string
}

type replyData struct {
	Subject string
	Reply   string
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
