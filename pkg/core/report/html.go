package report

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Apple SD Gothic Neo", "Noto Sans KR", sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #999; padding: 4px 8px; }
th { background: #4ECDC4; color: #fff; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Clean strips a fence wrapped around a whole Markdown document.
func Clean(input string) string {
	cleaned := strings.TrimSpace(input)
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") && len(cleaned) >= 6 {
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

// HTMLFragment converts Markdown to an HTML fragment. Raw HTML in the input
// is not passed through.
func HTMLFragment(markdown string) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Clean(markdown)), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HTML renders Markdown as a standalone page.
func HTML(title, markdown string) ([]byte, error) {
	body, err := HTMLFragment(markdown)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = page.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
