package app

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

// Templates adapts a parsed template set to echo's Renderer interface.
type Templates struct {
	*template.Template
}

// Render satisfies [echo.Renderer].
func (t *Templates) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.ExecuteTemplate(w, name, data)
}
