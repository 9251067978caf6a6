package app

import (
	"strings"

	"github.com/dshills/markstorm/internal/dispatcher/execctx"
	"github.com/dshills/markstorm/internal/markup"
)

// SeedCollector answers image and link prompts from their seeds.
//
// The seed is what the action derived from the selection plus any title or
// url passed with the action. When both are present the prompt resolves
// immediately; otherwise it stays pending until Editor.Resume or
// Editor.Cancel.
type SeedCollector struct{}

var _ execctx.MetadataCollector = SeedCollector{}

// Collect implements execctx.MetadataCollector.
func (SeedCollector) Collect(req *markup.Request, done func(meta markup.Metadata) error) {
	if strings.TrimSpace(req.Seed.Title) == "" || strings.TrimSpace(req.Seed.URL) == "" {
		return
	}
	_ = done(markup.Metadata{Title: req.Seed.Title, URL: req.Seed.URL})
}
