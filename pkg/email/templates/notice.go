package templates

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"
)

// NoticeParams fills the security notice layout.
type NoticeParams struct {
	Lang    string
	Title   string
	Message string
	At      time.Time
}

// Notice is the security notice sent for two-factor lifecycle events.
// All values are HTML-escaped.
func Notice(p NoticeParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<!DOCTYPE html>\n<html lang=\""+templ.EscapeString(p.Lang)+"\">\n<body>\n"+
			"<h1>"+templ.EscapeString(p.Title)+"</h1>\n"+
			"<p>"+templ.EscapeString(p.Message)+"</p>\n"+
			"<p><small>"+templ.EscapeString(p.At.UTC().Format("2006-01-02 15:04:05 MST"))+"</small></p>\n"+
			"</body>\n</html>\n")
		return err
	})
}
