// internal/layout/layout.go

// Package layout turns a styled tree into a positioned box tree. Boxes
// follow the CSS box model (content, padding, border, margin), block
// containers stack their children vertically, and runs of inline boxes
// that sit next to block siblings are wrapped in anonymous block boxes so
// every block container holds only block-level children.
package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/xkilldash9x/reflow/internal/css"
	"github.com/xkilldash9x/reflow/internal/style"
)

// -- Box Model --

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// ExpandedBy returns the rectangle grown outward by the edge sizes.
func (r Rect) ExpandedBy(e Edges) Rect {
	return Rect{
		X:      r.X - e.Left,
		Y:      r.Y - e.Top,
		Width:  r.Width + e.Left + e.Right,
		Height: r.Height + e.Top + e.Bottom,
	}
}

// Contains reports whether the point falls inside the rectangle. The top
// and left edges are inclusive, the bottom and right edges are not, so
// adjacent boxes never both claim a shared boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Edges holds per-side sizes for one ring of the box model.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Dimensions defines the geometry of a layout box.
type Dimensions struct {
	// Content area position and size, relative to the layout origin.
	Content Rect

	Padding Edges
	Border  Edges
	Margin  Edges
}

// PaddingBox returns the rectangle enclosing the content and padding.
func (d Dimensions) PaddingBox() Rect {
	return d.Content.ExpandedBy(d.Padding)
}

// BorderBox returns the rectangle enclosing the content, padding, and border.
func (d Dimensions) BorderBox() Rect {
	return d.PaddingBox().ExpandedBy(d.Border)
}

// MarginBox returns the rectangle enclosing the whole box including margins.
func (d Dimensions) MarginBox() Rect {
	return d.BorderBox().ExpandedBy(d.Margin)
}

// -- Layout Tree --

// BoxType tags how a box participates in layout.
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	AnonymousBlockBox
)

// String returns a short name for the box type, used in tree dumps.
func (t BoxType) String() string {
	switch t {
	case BlockBox:
		return "block"
	case InlineBox:
		return "inline"
	case AnonymousBlockBox:
		return "anonymous"
	default:
		return "unknown"
	}
}

// LayoutBox is a node in the layout tree. Anonymous boxes carry a nil
// StyledNode and contribute no edges of their own.
type LayoutBox struct {
	Dimensions Dimensions
	BoxType    BoxType
	StyledNode *style.StyledNode
	Children   []*LayoutBox
}

// NewLayoutBox creates an unpositioned box of the given type.
func NewLayoutBox(boxType BoxType, sn *style.StyledNode) *LayoutBox {
	return &LayoutBox{BoxType: boxType, StyledNode: sn}
}

// IsBlockLevel reports whether the box participates in block flow as a
// block-level child.
func (b *LayoutBox) IsBlockLevel() bool {
	return b.BoxType == BlockBox || b.BoxType == AnonymousBlockBox
}

// Create builds the layout tree for the styled tree and computes its
// geometry within the given available width. A root styled to display:none
// produces no tree at all.
func Create(styledRoot *style.StyledNode, availableWidth float64) *LayoutBox {
	root := buildBoxTree(styledRoot)
	if root == nil {
		return nil
	}
	containing := Dimensions{Content: Rect{Width: availableWidth}}
	root.layout(containing)
	return root
}

// buildBoxTree maps the styled tree onto boxes, pruning display:none
// subtrees and wrapping inline runs where block siblings demand it.
func buildBoxTree(sn *style.StyledNode) *LayoutBox {
	if sn == nil {
		return nil
	}

	var box *LayoutBox
	switch sn.Display() {
	case style.DisplayNone:
		return nil
	case style.DisplayBlock:
		box = NewLayoutBox(BlockBox, sn)
	default:
		box = NewLayoutBox(InlineBox, sn)
	}

	var kids []*LayoutBox
	for _, child := range sn.Children {
		if childBox := buildBoxTree(child); childBox != nil {
			kids = append(kids, childBox)
		}
	}
	box.Children = groupInlineRuns(kids)
	return box
}

// groupInlineRuns wraps each maximal run of consecutive inline boxes in an
// anonymous block box, but only when at least one block sibling is
// present. An all-inline child list is left untouched.
func groupInlineRuns(kids []*LayoutBox) []*LayoutBox {
	hasBlock := false
	for _, k := range kids {
		if k.IsBlockLevel() {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		return kids
	}

	var out []*LayoutBox
	var run []*LayoutBox
	flush := func() {
		if len(run) == 0 {
			return
		}
		anon := NewLayoutBox(AnonymousBlockBox, nil)
		anon.Children = run
		out = append(out, anon)
		run = nil
	}

	for _, k := range kids {
		if k.BoxType == InlineBox {
			run = append(run, k)
			continue
		}
		flush()
		out = append(out, k)
	}
	flush()
	return out
}

// -- Geometry --

// layout positions the box within its containing block's dimensions. The
// containing block's content height acts as the vertical cursor: it holds
// the stacked height of the siblings laid out so far. Inline boxes take
// block geometry here; line building belongs to a later text-shaping
// stage.
func (b *LayoutBox) layout(containing Dimensions) {
	b.calculateWidth(containing)
	b.calculatePosition(containing)
	b.layoutChildren()
	b.calculateHeight()
}

// calculateWidth derives the content width from the containing block's
// content width minus this box's own edges. A declared width property
// carries no weight here. Negative results clamp to zero.
func (b *LayoutBox) calculateWidth(containing Dimensions) {
	d := &b.Dimensions
	d.Margin = Edges{
		Top:    b.edge(css.MarginTop, css.Margin),
		Right:  b.edge(css.MarginRight, css.Margin),
		Bottom: b.edge(css.MarginBottom, css.Margin),
		Left:   b.edge(css.MarginLeft, css.Margin),
	}
	d.Border = Edges{
		Top:    b.edge(css.BorderTopWidth, css.BorderWidth),
		Right:  b.edge(css.BorderRightWidth, css.BorderWidth),
		Bottom: b.edge(css.BorderBottomWidth, css.BorderWidth),
		Left:   b.edge(css.BorderLeftWidth, css.BorderWidth),
	}
	d.Padding = Edges{
		Top:    b.edge(css.PaddingTop, css.Padding),
		Right:  b.edge(css.PaddingRight, css.Padding),
		Bottom: b.edge(css.PaddingBottom, css.Padding),
		Left:   b.edge(css.PaddingLeft, css.Padding),
	}

	width := containing.Content.Width -
		d.Margin.Left - d.Margin.Right -
		d.Border.Left - d.Border.Right -
		d.Padding.Left - d.Padding.Right
	d.Content.Width = math.Max(width, 0)
}

// calculatePosition places the content origin inside the containing
// block, below the siblings already stacked there.
func (b *LayoutBox) calculatePosition(containing Dimensions) {
	d := &b.Dimensions
	d.Content.X = containing.Content.X + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = containing.Content.Y + containing.Content.Height + d.Margin.Top + d.Border.Top + d.Padding.Top
}

// layoutChildren lays out each child against this box's dimensions,
// growing the content height by each child's margin box as it goes.
func (b *LayoutBox) layoutChildren() {
	d := &b.Dimensions
	for _, child := range b.Children {
		child.layout(*d)
		d.Content.Height += child.Dimensions.MarginBox().Height
	}
}

// calculateHeight overrides the stacked height with an explicit height
// when one is declared and convertible to pixels. Values like "auto" keep
// the children-derived height.
func (b *LayoutBox) calculateHeight() {
	if b.StyledNode == nil {
		return
	}
	raw, ok := b.StyledNode.Raw(css.Height)
	if !ok {
		return
	}
	if px, ok := style.Pixels(string(raw), style.BaseFontSize); ok {
		b.Dimensions.Content.Height = math.Max(px, 0)
	}
}

// edge resolves one side of a box ring: the per-side property wins, the
// shorthand fills in for it, and anything unset or non-convertible is 0.
func (b *LayoutBox) edge(side, shorthand css.Property) float64 {
	if b.StyledNode == nil {
		return 0
	}
	raw := b.StyledNode.Lookup(side, b.StyledNode.Lookup(shorthand, "0"))
	px, ok := style.Pixels(raw, style.BaseFontSize)
	if !ok {
		return 0
	}
	return px
}

// -- Diagnostics --

// String renders the tree as a deterministic indented dump, one box per
// line with its type, tag, and content geometry.
func (b *LayoutBox) String() string {
	var sb strings.Builder
	b.dump(&sb, 0)
	return sb.String()
}

func (b *LayoutBox) dump(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(b.BoxType.String())
	if b.StyledNode != nil && b.StyledNode.TagName() != "" {
		fmt.Fprintf(sb, " <%s>", b.StyledNode.TagName())
	}
	c := b.Dimensions.Content
	fmt.Fprintf(sb, " x=%v y=%v width=%v height=%v\n", c.X, c.Y, c.Width, c.Height)
	for _, child := range b.Children {
		child.dump(sb, depth+1)
	}
}

// -- Hit Testing --

// Point is a position in the same coordinate space as the layout tree.
type Point struct {
	X, Y float64
}

// BoxAtPosition returns the deepest box whose border box contains the
// point, searching children before self in document order. Margins are
// not part of a box for hit testing. Returns nil when no box contains the
// point.
func BoxAtPosition(root *LayoutBox, p Point) *LayoutBox {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if hit := BoxAtPosition(child, p); hit != nil {
			return hit
		}
	}
	if root.Dimensions.BorderBox().Contains(p) {
		return root
	}
	return nil
}
