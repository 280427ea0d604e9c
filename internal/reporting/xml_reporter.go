// internal/reporting/xml_reporter.go
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xkilldash9x/reflow/api/schemas"
	"github.com/xkilldash9x/reflow/internal/observability"
)

// XMLReporter buffers envelopes and writes a single XML document when the
// report is closed. It is thread safe.
type XMLReporter struct {
	writer io.WriteCloser
	logger *zap.Logger

	mu        sync.Mutex
	envelopes []*schemas.RenderEnvelope
}

// NewXMLReporter creates a reporter producing one XML document covering all
// envelopes. It takes ownership of the writer.
func NewXMLReporter(writer io.WriteCloser) *XMLReporter {
	return &XMLReporter{
		writer: writer,
		logger: observability.GetLogger().Named("xml_reporter"),
	}
}

// Write buffers one envelope for the final document.
func (r *XMLReporter) Write(env *schemas.RenderEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.envelopes = append(r.envelopes, env)
	return nil
}

// Close builds the XML document from the buffered envelopes, writes it, and
// closes the writer.
func (r *XMLReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	report := doc.CreateElement("renderReport")

	for _, env := range r.envelopes {
		pass := report.CreateElement("pass")
		pass.CreateAttr("id", env.PassID)
		pass.CreateAttr("timestamp", env.Timestamp.Format(time.RFC3339Nano))
		pass.CreateAttr("viewportWidth", formatFloat(env.ViewportWidth))

		stats := pass.CreateElement("stats")
		stats.CreateAttr("styledNodes", strconv.Itoa(env.Stats.StyledNodes))
		stats.CreateAttr("boxes", strconv.Itoa(env.Stats.Boxes))

		if env.BoxTree != nil {
			appendBoxElement(pass, env.BoxTree)
		}
		if len(env.Probes) > 0 {
			probes := pass.CreateElement("probes")
			for _, p := range env.Probes {
				probe := probes.CreateElement("probe")
				probe.CreateAttr("x", formatFloat(p.X))
				probe.CreateAttr("y", formatFloat(p.Y))
				probe.CreateAttr("hit", strconv.FormatBool(p.Hit))
				if p.Kind != "" {
					probe.CreateAttr("kind", p.Kind)
				}
				if p.Tag != "" {
					probe.CreateAttr("tag", p.Tag)
				}
			}
		}
	}

	r.logger.Info("Finalizing XML report", zap.Int("passes", len(r.envelopes)))

	doc.Indent(2)
	_, writeErr := doc.WriteTo(r.writer)
	if writeErr != nil {
		writeErr = fmt.Errorf("failed to write XML report: %w", writeErr)
	}
	closeErr := r.writer.Close()
	if closeErr != nil {
		closeErr = fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return multierr.Append(writeErr, closeErr)
}

// appendBoxElement converts one box subtree into nested box elements.
func appendBoxElement(parent *etree.Element, node *schemas.BoxNode) {
	box := parent.CreateElement("box")
	box.CreateAttr("kind", node.Kind)
	if node.Tag != "" {
		box.CreateAttr("tag", node.Tag)
	}
	box.CreateAttr("x", formatFloat(node.X))
	box.CreateAttr("y", formatFloat(node.Y))
	box.CreateAttr("width", formatFloat(node.Width))
	box.CreateAttr("height", formatFloat(node.Height))
	appendEdges(box, "margin", node.Margin)
	appendEdges(box, "border", node.Border)
	appendEdges(box, "padding", node.Padding)
	for _, child := range node.Children {
		appendBoxElement(box, child)
	}
}

// appendEdges emits an edge element unless all four sides are zero.
func appendEdges(parent *etree.Element, name string, e schemas.EdgeSizes) {
	if e == (schemas.EdgeSizes{}) {
		return
	}
	el := parent.CreateElement(name)
	el.CreateAttr("top", formatFloat(e.Top))
	el.CreateAttr("right", formatFloat(e.Right))
	el.CreateAttr("bottom", formatFloat(e.Bottom))
	el.CreateAttr("left", formatFloat(e.Left))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
