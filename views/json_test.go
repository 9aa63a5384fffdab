package views

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONEngineRender(t *testing.T) {
	var buf bytes.Buffer
	engine := NewJSON(false)
	require.NoError(t, engine.Load())
	require.NoError(t, engine.Render(&buf, "home", fiber.Map{"title": "Home"}, "layout"))

	var page struct {
		Template string                 `json:"template"`
		Layout   string                 `json:"layout"`
		Data     map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &page))
	assert.Equal(t, "home", page.Template)
	assert.Equal(t, "layout", page.Layout)
	assert.Equal(t, "Home", page.Data["title"])
}
