// Package views embeds the HTML templates and builds the fiber view engine.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"blog/internal/forms"

	"github.com/gofiber/template/html/v2"
)

// Layout wraps every page.
const Layout = "layouts/main"

//go:embed templates
var files embed.FS

// NewEngine returns a template engine over the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(Funcs())
	return engine
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// safe renders HTML that was sanitised when it was stored.
		"safe": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec
		},
		"fieldErrors": fieldErrors,
	}
}

func fieldErrors(errs any, field string) []string {
	switch e := errs.(type) {
	case forms.Errors:
		return e.Field(field)
	case map[string][]string:
		return e[field]
	default:
		return nil
	}
}
