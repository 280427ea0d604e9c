// internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/reflow/api/schemas"
	"github.com/xkilldash9x/reflow/internal/observability"
)

// JSONReporter writes each envelope as an indented JSON document. It is
// thread safe.
type JSONReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
}

// NewJSONReporter creates a reporter producing JSON output. It takes
// ownership of the writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		logger: observability.GetLogger().Named("json_reporter"),
	}
}

// Write marshals one envelope and writes it immediately.
func (r *JSONReporter) Write(env *schemas.RenderEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode render envelope: %w", err)
	}
	data = append(data, '\n')

	if _, err := r.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	r.logger.Debug("Wrote render envelope",
		zap.String("pass_id", env.PassID),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Close releases the underlying writer.
func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
