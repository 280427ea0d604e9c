// internal/reporting/envelope.go
package reporting

import (
	"time"

	"github.com/xkilldash9x/reflow/api/schemas"
	"github.com/xkilldash9x/reflow/internal/engine"
	"github.com/xkilldash9x/reflow/internal/layout"
)

// BuildEnvelope converts one render pass into its report form, running each
// hit-test probe against the pass's box tree.
func BuildEnvelope(res *engine.Result, probes []layout.Point) *schemas.RenderEnvelope {
	env := &schemas.RenderEnvelope{
		PassID:        res.PassID,
		Timestamp:     time.Now().UTC(),
		ViewportWidth: res.ViewportWidth,
		Stats: schemas.RenderStats{
			StyledNodes: engine.CountStyled(res.Styled),
			Boxes:       engine.CountBoxes(res.Box),
		},
		BoxTree: boxNode(res.Box),
	}

	for _, p := range probes {
		probe := schemas.ProbeResult{X: p.X, Y: p.Y}
		if hit := res.HitTest(p); hit != nil {
			probe.Hit = true
			probe.Kind = hit.BoxType.String()
			if hit.StyledNode != nil {
				probe.Tag = hit.StyledNode.TagName()
			}
		}
		env.Probes = append(env.Probes, probe)
	}
	return env
}

// boxNode converts a layout subtree into its wire form.
func boxNode(b *layout.LayoutBox) *schemas.BoxNode {
	if b == nil {
		return nil
	}
	node := &schemas.BoxNode{
		Kind:    b.BoxType.String(),
		X:       b.Dimensions.Content.X,
		Y:       b.Dimensions.Content.Y,
		Width:   b.Dimensions.Content.Width,
		Height:  b.Dimensions.Content.Height,
		Margin:  edgeSizes(b.Dimensions.Margin),
		Border:  edgeSizes(b.Dimensions.Border),
		Padding: edgeSizes(b.Dimensions.Padding),
	}
	if b.StyledNode != nil {
		node.Tag = b.StyledNode.TagName()
	}
	for _, child := range b.Children {
		node.Children = append(node.Children, boxNode(child))
	}
	return node
}

func edgeSizes(e layout.Edges) schemas.EdgeSizes {
	return schemas.EdgeSizes{Top: e.Top, Right: e.Right, Bottom: e.Bottom, Left: e.Left}
}
