// Package render wraps plain text into a displayable HTML document.
package render

import (
	"bytes"
	"html/template"
	"io"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 42rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
.content { white-space: pre-wrap; }
</style>
</head>
<body>
<div class="content">{{.Body}}</div>
</body>
</html>
`))

type pageData struct {
	Title string
	Body  string
}

// HTML writes body as an HTML document. Every character of title and body is
// escaped, so model output is always shown as text.
func HTML(w io.Writer, title, body string) error {
	return page.Execute(w, pageData{Title: title, Body: body})
}

// HTMLString is HTML into a string.
func HTMLString(title, body string) (string, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, title, body); err != nil {
		return "", err
	}
	return buf.String(), nil
}
