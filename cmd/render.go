package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/reflow/internal/config"
	"github.com/xkilldash9x/reflow/internal/css"
	"github.com/xkilldash9x/reflow/internal/engine"
	"github.com/xkilldash9x/reflow/internal/layout"
	"github.com/xkilldash9x/reflow/internal/observability"
	"github.com/xkilldash9x/reflow/internal/reporting"
)

// newRenderCmd creates and configures the `render` command.
func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Renders an HTML document into a laid-out box tree",
		Long: `Render parses an HTML document and one or more CSS stylesheets, resolves
the styles, builds the layout tree for the configured viewport width, and
writes the result in the requested format. Reads the document from stdin
when no path (or '-') is given.`,
		Args: cobra.MaximumNArgs(1),
		// Bind flags to their corresponding Viper keys so command-line flags
		// correctly override values from the config file and environment.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			bindings := map[string]string{
				"render.viewport_width": "width",
				"render.parallelism":    "parallel",
				"render.format":         "format",
				"render.output":         "out",
				"render.user_agent_css": "user-agent-css",
			}
			for key, flag := range bindings {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the signal-aware context installed by Execute.
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-unmarshal the config. Now that flags are bound in PreRunE,
			// Viper applies the overrides with the right precedence.
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to finalize config with flag overrides: %w", err)
			}

			docPath := "-"
			if len(args) > 0 {
				docPath = args[0]
			}

			cssPaths, err := cmd.Flags().GetStringSlice("css")
			if err != nil {
				return err
			}
			probeSpecs, err := cmd.Flags().GetStringSlice("probe")
			if err != nil {
				return err
			}
			probes, err := parseProbes(probeSpecs)
			if err != nil {
				return err
			}

			logger.Info("Starting render",
				zap.String("document", docPath),
				zap.Strings("stylesheets", cssPaths),
				zap.Float64("viewport_width", cfg.Render.ViewportWidth),
				zap.Int("parallelism", cfg.Render.Parallelism),
				zap.String("format", cfg.Render.Format),
			)

			doc, err := readDocument(docPath)
			if err != nil {
				return err
			}
			sheet, err := loadStylesheets(css.NewParser(logger), cfg.Render.UserAgentCSS, cssPaths)
			if err != nil {
				return err
			}

			res, err := engine.New(cfg.Render, logger).Render(ctx, doc, sheet)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Warn("Render aborted gracefully")
					return fmt.Errorf("render aborted by user signal")
				}
				logger.Error("Render failed", zap.Error(err))
				return err
			}

			reporter, err := reporting.New(cfg.Render.Format, cfg.Render.Output)
			if err != nil {
				return fmt.Errorf("failed to initialize reporter: %w", err)
			}

			writeErr := reporter.Write(reporting.BuildEnvelope(res, probes))
			if err := reporter.Close(); err != nil {
				logger.Error("Failed to close reporter", zap.Error(err))
				if writeErr == nil {
					writeErr = err
				}
			}
			if writeErr != nil {
				return fmt.Errorf("failed to write report: %w", writeErr)
			}

			logger.Info("Render complete", zap.String("pass_id", res.PassID))
			return nil
		},
	}

	// Reporting flags
	renderCmd.Flags().StringP("format", "f", "text", "Format for the output ('text', 'json', 'xml'). (Overrides config/env)")
	renderCmd.Flags().StringP("out", "o", "-", "Output path for the report. '-' writes to stdout. (Overrides config/env)")

	// Render configuration override flags.
	renderCmd.Flags().Float64P("width", "w", 0, "Viewport width in pixels. (Overrides config/env)")
	renderCmd.Flags().IntP("parallel", "j", 0, "Number of concurrent styling workers. (Overrides config/env)")
	renderCmd.Flags().String("user-agent-css", "", "User agent stylesheet applied beneath the author sheets. (Overrides config/env)")

	// Per-invocation inputs.
	renderCmd.Flags().StringSliceP("css", "s", nil, "Stylesheet file to apply. Repeatable; later files take precedence.")
	renderCmd.Flags().StringSlice("probe", nil, "Hit-test probe as 'x,y'. Repeatable.")

	return renderCmd
}

// readDocument parses the HTML document at path, or from stdin for "-".
func readDocument(path string) (*html.Node, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve document path %s: %w", path, err)
		}
		f, err := os.Open(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to open document %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// loadStylesheets parses the user agent sheet (when configured) and the
// author sheets into one stylesheet, in that order, so author declarations
// win under last-wins lookup.
func loadStylesheets(parser *css.Parser, userAgentPath string, authorPaths []string) (*css.Stylesheet, error) {
	paths := make([]string, 0, len(authorPaths)+1)
	if userAgentPath != "" {
		paths = append(paths, userAgentPath)
	}
	paths = append(paths, authorPaths...)

	sheet := &css.Stylesheet{}
	for _, p := range paths {
		expanded, err := homedir.Expand(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stylesheet path %s: %w", p, err)
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to read stylesheet %s: %w", p, err)
		}
		sheet.Append(parser.Parse(data, p))
	}
	return sheet, nil
}

// parseProbes converts repeated "x,y" flag values into points.
func parseProbes(specs []string) ([]layout.Point, error) {
	points := make([]layout.Point, 0, len(specs))
	for _, spec := range specs {
		xs, ys, ok := strings.Cut(spec, ",")
		if !ok {
			return nil, fmt.Errorf("invalid probe %q: expected 'x,y'", spec)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid probe %q: %w", spec, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid probe %q: %w", spec, err)
		}
		points = append(points, layout.Point{X: x, Y: y})
	}
	return points, nil
}
