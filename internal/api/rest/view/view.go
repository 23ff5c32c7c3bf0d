// Package view renders the post board page.
package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/danilovkiri/dk_go_post_board/internal/service/modelpage"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"statusClass": statusClass,
}).ParseFS(templatesFS, "templates/*.html"))

func statusClass(kind modelpage.StatusKind) string {
	if kind == modelpage.StatusIdle || kind == "" {
		return "status-message"
	}
	return "status-message status-message--" + string(kind)
}

// RenderPage writes the full HTML document for page.
func RenderPage(w io.Writer, page *modelpage.Page) error {
	return templates.ExecuteTemplate(w, "index.html", page)
}
