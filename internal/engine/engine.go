// internal/engine/engine.go

// Package engine drives complete render passes: style resolution against a
// stylesheet, then layout for a viewport width, producing the trees that
// reporting and hit-test probes consume.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/reflow/internal/config"
	"github.com/xkilldash9x/reflow/internal/css"
	"github.com/xkilldash9x/reflow/internal/layout"
	"github.com/xkilldash9x/reflow/internal/style"
)

// Engine runs render passes with a fixed render configuration.
type Engine struct {
	cfg    config.RenderConfig
	logger *zap.Logger
}

// New creates an Engine. A nil logger is replaced with a no-op one.
func New(cfg config.RenderConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "render_engine")),
	}
}

// Result holds the trees one render pass produced.
type Result struct {
	PassID        string
	ViewportWidth float64
	Styled        *style.StyledNode
	Box           *layout.LayoutBox
}

// HitTest runs one probe against the pass's box tree and returns the
// deepest box containing the point, or nil.
func (r *Result) HitTest(p layout.Point) *layout.LayoutBox {
	return layout.BoxAtPosition(r.Box, p)
}

// Render styles the document against the stylesheet and lays the styled
// tree out for the configured viewport width. The document may be a parsed
// document node or a bare element subtree. With Parallelism above one,
// sibling subtrees are styled concurrently.
func (e *Engine) Render(ctx context.Context, doc *html.Node, sheet *css.Stylesheet) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := rootElement(doc)
	if root == nil {
		return nil, fmt.Errorf("document has no element root")
	}

	passID := uuid.New().String()
	start := time.Now()

	var (
		styled *style.StyledNode
		err    error
	)
	if e.cfg.Parallelism > 1 {
		styled, err = style.BuildTreeParallel(ctx, root, sheet, e.cfg.Parallelism)
	} else {
		styled = style.BuildTree(root, sheet)
	}
	if err != nil {
		return nil, fmt.Errorf("styling document: %w", err)
	}

	box := layout.Create(styled, e.cfg.ViewportWidth)
	if box == nil {
		e.logger.Warn("Render pass produced no boxes; the root is display:none.",
			zap.String("pass_id", passID))
	}

	e.logger.Info("Render pass complete.",
		zap.String("pass_id", passID),
		zap.Float64("viewport_width", e.cfg.ViewportWidth),
		zap.Int("styled_nodes", CountStyled(styled)),
		zap.Int("boxes", CountBoxes(box)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Result{
		PassID:        passID,
		ViewportWidth: e.cfg.ViewportWidth,
		Styled:        styled,
		Box:           box,
	}, nil
}

// CountStyled returns the number of nodes in a styled tree.
func CountStyled(sn *style.StyledNode) int {
	if sn == nil {
		return 0
	}
	n := 1
	for _, child := range sn.Children {
		n += CountStyled(child)
	}
	return n
}

// CountBoxes returns the number of boxes in a layout tree, anonymous boxes
// included.
func CountBoxes(b *layout.LayoutBox) int {
	if b == nil {
		return 0
	}
	n := 1
	for _, child := range b.Children {
		n += CountBoxes(child)
	}
	return n
}

// rootElement resolves the element to style: the node itself when it is an
// element, otherwise its first element child (the <html> element of a
// parsed document).
func rootElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}
