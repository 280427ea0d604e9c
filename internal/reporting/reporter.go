// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/reflow/api/schemas"
)

// Reporter defines the interface for writing render results to an output.
type Reporter interface {
	// Write processes a single render envelope.
	Write(env *schemas.RenderEnvelope) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a new reporter based on the specified format and output path.
// A path of "-", "stdout" or the empty string writes to standard output; any
// other path is created as a file, with a leading ~ expanded to the user's
// home directory.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdout := outputPath == "" || outputPath == "-" || outputPath == "stdout"

	if isStdout {
		// Wrap Stdout so Close() is a no-op.
		writer = &nopWriteCloser{os.Stdout}
	} else {
		expanded, err := homedir.Expand(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve output path %s: %w", outputPath, err)
		}
		f, err := os.Create(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", expanded, err)
		}
		writer = f
	}

	// Close the file handle if no reporter takes ownership of it.
	cleanup := func() {
		if !isStdout {
			writer.Close()
		}
	}

	switch format {
	case "text":
		return NewTextReporter(writer), nil
	case "json":
		return NewJSONReporter(writer), nil
	case "xml":
		return NewXMLReporter(writer), nil
	default:
		cleanup()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
