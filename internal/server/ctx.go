package server

import (
	"bytes"
	"fmt"
	"html"
	"text/template"

	"github.com/woozymasta/geodna/assets"
	"github.com/woozymasta/geodna/internal/config"
	"github.com/woozymasta/geodna/internal/processor"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config    *config.Config
	IndexHTML []byte
	Overlay   processor.OverlayOptions
}

type pageData struct {
	CSS         string
	JS          string
	Attribution string
	Precision   int
}

// NewServerContext prepares overlay options and the minified index page.
func NewServerContext(cfg *config.Config) (*ServerContext, error) {
	log.Info().
		Int("precision", cfg.Precision).
		Int("zoom_limit", cfg.Tiles.ZoomLimit).
		Str("cache_dir", cfg.Tiles.CacheDir).
		Bool("cache", !cfg.Tiles.NoCache).
		Msg("Initializing server context")

	overlay, err := processor.OverlayOptionsFromConfig(cfg.Tiles)
	if err != nil {
		return nil, fmt.Errorf("overlay options: %w", err)
	}

	index, err := buildIndex(cfg)
	if err != nil {
		return nil, fmt.Errorf("build index page: %w", err)
	}

	log.Debug().Int("index_bytes", len(index)).Msg("Index page minified")

	return &ServerContext{
		Config:    cfg,
		IndexHTML: index,
		Overlay:   overlay,
	}, nil
}

// buildIndex renders the page template with minified CSS and JS inlined
// and minifies the result.
func buildIndex(cfg *config.Config) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", mhtml.Minify)
	m.AddFunc("text/javascript", js.Minify)

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, fmt.Errorf("minify css: %w", err)
	}
	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, fmt.Errorf("minify js: %w", err)
	}

	tmpl, err := template.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, pageData{
		CSS:         cssMin,
		JS:          jsMin,
		Attribution: html.EscapeString(cfg.Attribution),
		Precision:   cfg.Precision,
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	finalHTML, err := m.String("text/html", buf.String())
	if err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}

	return []byte(finalHTML), nil
}
