// Package markdown turns raw post bodies into render-ready HTML documents.
//
// The conversion is a fixed pipeline of named steps applied in order:
// gfm (tables, strikethrough, autolinked URLs), heading-ids (stable unique
// id slugs on every heading), heading-anchors (each heading wrapped in a
// self-link to its id), and highlight (chroma classes on fenced code).
// The order is load-bearing: ids must exist before anchors reference them,
// and highlighting rewrites code blocks only after heading processing is
// done, so the steps are assembled from a single ordered list rather than
// ad-hoc options.
//
// Raw HTML embedded in the source is escaped unless WithRawHTML is set.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// Document is the ephemeral rendered form of a post body. It is produced
// fresh per render and never persisted.
type Document struct {
	HTML     string    `json:"html"`
	Headings []Heading `json:"headings"`
}

// Heading describes one heading in the document; ID is the anchor target.
type Heading struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

type options struct {
	style     string
	rawHTML   bool
	hardWraps bool
}

// RendererOption configures a Renderer.
type RendererOption func(*options)

// WithRawHTML passes raw HTML in the source through unescaped. Off by
// default: post bodies are treated as untrusted and sanitized.
func WithRawHTML() RendererOption {
	return func(o *options) { o.rawHTML = true }
}

// WithHighlightStyle sets the chroma style name (default "github").
func WithHighlightStyle(name string) RendererOption {
	return func(o *options) { o.style = name }
}

// WithHardWraps renders single newlines as <br>.
func WithHardWraps() RendererOption {
	return func(o *options) { o.hardWraps = true }
}

type engineConfig struct {
	extensions      []goldmark.Extender
	parserOptions   []parser.Option
	rendererOptions []renderer.Option
}

type pipelineStep struct {
	name  string
	apply func(*engineConfig)
}

func pipeline(o options) []pipelineStep {
	return []pipelineStep{
		{name: "gfm", apply: func(c *engineConfig) {
			c.extensions = append(c.extensions, extension.GFM)
		}},
		{name: "heading-ids", apply: func(c *engineConfig) {
			c.parserOptions = append(c.parserOptions, parser.WithAutoHeadingID())
		}},
		{name: "heading-anchors", apply: func(c *engineConfig) {
			c.parserOptions = append(c.parserOptions,
				parser.WithASTTransformers(util.Prioritized(&anchorTransformer{}, 500)))
		}},
		{name: "highlight", apply: func(c *engineConfig) {
			c.extensions = append(c.extensions, highlighting.NewHighlighting(
				highlighting.WithStyle(o.style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			))
		}},
	}
}

// Renderer converts markdown to Documents. It is stateless after
// construction and safe for concurrent use.
type Renderer struct {
	md    goldmark.Markdown
	steps []string
}

// New builds a Renderer from the fixed pipeline plus the given options.
func New(opts ...RendererOption) *Renderer {
	o := options{style: "github"}
	for _, fn := range opts {
		fn(&o)
	}

	var cfg engineConfig
	var names []string
	for _, step := range pipeline(o) {
		step.apply(&cfg)
		names = append(names, step.name)
	}
	if o.rawHTML {
		cfg.rendererOptions = append(cfg.rendererOptions, html.WithUnsafe())
	}
	if o.hardWraps {
		cfg.rendererOptions = append(cfg.rendererOptions, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(cfg.extensions...),
		goldmark.WithParserOptions(cfg.parserOptions...),
		goldmark.WithRendererOptions(cfg.rendererOptions...),
	)
	return &Renderer{md: md, steps: names}
}

// Steps returns the ordered names of the pipeline steps.
func (r *Renderer) Steps() []string {
	out := make([]string, len(r.steps))
	copy(out, r.steps)
	return out
}

// Render converts src into a Document, collecting heading metadata from
// the parsed tree before serializing it to HTML.
func (r *Renderer) Render(src string) (*Document, error) {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))
	headings := collectHeadings(doc, source)

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return nil, fmt.Errorf("markdown: render: %w", err)
	}
	return &Document{HTML: buf.String(), Headings: headings}, nil
}

// Component wraps the rendered document as a templ component for direct
// embedding into an HTML page.
func (r *Renderer) Component(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		doc, err := r.Render(src)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, doc.HTML)
		return err
	})
}
