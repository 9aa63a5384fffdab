package views

import (
	"encoding/json"
	"io"

	"github.com/gofiber/fiber/v2"
)

// JSONEngine là fiber.Views mặc định: render page dưới dạng JSON {template, data}.
// Ứng dụng thật thay bằng engine template HTML cùng tên page.
type JSONEngine struct {
	indent bool
}

// NewJSON creates the JSON views engine
func NewJSON(indent bool) *JSONEngine {
	return &JSONEngine{indent: indent}
}

// Page là payload được render
type Page struct {
	Template string      `json:"template"`
	Layout   string      `json:"layout,omitempty"`
	Data     interface{} `json:"data"`
}

// Load implements fiber.Views
func (e *JSONEngine) Load() error {
	return nil
}

// Render implements fiber.Views
func (e *JSONEngine) Render(w io.Writer, name string, binding interface{}, layout ...string) error {
	page := Page{Template: name, Data: binding}
	if len(layout) > 0 {
		page.Layout = layout[0]
	}

	enc := json.NewEncoder(w)
	if e.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(page)
}

var _ fiber.Views = (*JSONEngine)(nil)
