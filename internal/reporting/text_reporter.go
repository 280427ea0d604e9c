// internal/reporting/text_reporter.go
package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/reflow/api/schemas"
	"github.com/xkilldash9x/reflow/internal/observability"
)

// TextReporter renders each envelope as a human readable box tree dump. It
// is thread safe.
type TextReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
}

// NewTextReporter creates a reporter producing plain text output. It takes
// ownership of the writer.
func NewTextReporter(writer io.WriteCloser) *TextReporter {
	return &TextReporter{
		writer: writer,
		logger: observability.GetLogger().Named("text_reporter"),
	}
}

// Write formats one envelope and writes it immediately.
func (r *TextReporter) Write(env *schemas.RenderEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "render pass %s viewport=%v styled_nodes=%d boxes=%d\n",
		env.PassID, env.ViewportWidth, env.Stats.StyledNodes, env.Stats.Boxes)
	writeBoxNode(&sb, env.BoxTree, 0)
	for _, p := range env.Probes {
		if !p.Hit {
			fmt.Fprintf(&sb, "probe (%v, %v) miss\n", p.X, p.Y)
			continue
		}
		fmt.Fprintf(&sb, "probe (%v, %v) hit %s", p.X, p.Y, p.Kind)
		if p.Tag != "" {
			fmt.Fprintf(&sb, " <%s>", p.Tag)
		}
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(r.writer, sb.String()); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	r.logger.Debug("Wrote render envelope", zap.String("pass_id", env.PassID))
	return nil
}

// Close releases the underlying writer.
func (r *TextReporter) Close() error {
	return r.writer.Close()
}

// writeBoxNode appends one dump line per box, indented two spaces per tree
// level, matching the layout tree's own String format.
func writeBoxNode(sb *strings.Builder, node *schemas.BoxNode, depth int) {
	if node == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(node.Kind)
	if node.Tag != "" {
		fmt.Fprintf(sb, " <%s>", node.Tag)
	}
	fmt.Fprintf(sb, " x=%v y=%v width=%v height=%v\n", node.X, node.Y, node.Width, node.Height)
	for _, child := range node.Children {
		writeBoxNode(sb, child, depth+1)
	}
}
