// File: cmd/render_test.go
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/reflow/api/schemas"
	"github.com/xkilldash9x/reflow/internal/config"
	"github.com/xkilldash9x/reflow/internal/css"
	"github.com/xkilldash9x/reflow/internal/layout"
)

const (
	testDocument = `<html><body><p>hello</p></body></html>`
	testSheet    = `html, body, p { display: block; } p { height: 30px; }`
)

// writeTempFile drops content into a fresh temp file and returns its path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// executeRender runs a fresh render command with clean viper state.
func executeRender(t *testing.T, args ...string) error {
	t.Helper()
	resetForTest(t)
	config.SetDefaults(viper.GetViper())

	cmd := newRenderCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

func TestParseProbes(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []layout.Point
		wantErr string
	}{
		{name: "empty", specs: nil, want: []layout.Point{}},
		{name: "single", specs: []string{"100,20"}, want: []layout.Point{{X: 100, Y: 20}}},
		{name: "spaces and decimals", specs: []string{" 3.5 , -2 "}, want: []layout.Point{{X: 3.5, Y: -2}}},
		{name: "multiple", specs: []string{"1,2", "3,4"}, want: []layout.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}},
		{name: "missing comma", specs: []string{"100"}, wantErr: "expected 'x,y'"},
		{name: "not a number", specs: []string{"a,b"}, wantErr: "invalid probe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProbes(tt.specs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadStylesheets(t *testing.T) {
	ua := writeTempFile(t, "ua.css", "p { height: 10px; }")
	author := writeTempFile(t, "author.css", "p { height: 20px; }")

	sheet, err := loadStylesheets(css.NewParser(nil), ua, []string{author})
	require.NoError(t, err)
	require.Len(t, sheet.Rules, 2)
	// The user agent sheet comes first so author declarations win.
	assert.Equal(t, css.Value("10px"), sheet.Rules[0].Declarations[0].Value)
	assert.Equal(t, css.Value("20px"), sheet.Rules[1].Declarations[0].Value)
}

func TestLoadStylesheetsMissingFile(t *testing.T) {
	_, err := loadStylesheets(css.NewParser(nil), "", []string{"/no/such/file.css"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read stylesheet")
}

func TestLoadStylesheetsEmpty(t *testing.T) {
	sheet, err := loadStylesheets(css.NewParser(nil), "", nil)
	require.NoError(t, err)
	assert.Empty(t, sheet.Rules)
}

func TestReadDocument(t *testing.T) {
	path := writeTempFile(t, "doc.html", testDocument)
	doc, err := readDocument(path)
	require.NoError(t, err)
	require.NotNil(t, doc)

	_, err = readDocument(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open document")
}

func TestRenderCommandJSON(t *testing.T) {
	doc := writeTempFile(t, "doc.html", testDocument)
	sheet := writeTempFile(t, "style.css", testSheet)
	out := filepath.Join(t.TempDir(), "report.json")

	err := executeRender(t, doc, "--css", sheet, "-f", "json", "-o", out,
		"--probe", "5,5", "--probe", "5,900")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var env schemas.RenderEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.NotEmpty(t, env.PassID)
	assert.Equal(t, 800.0, env.ViewportWidth)
	require.NotNil(t, env.BoxTree)
	assert.Equal(t, "html", env.BoxTree.Tag)

	require.Len(t, env.Probes, 2)
	assert.True(t, env.Probes[0].Hit)
	assert.Equal(t, "p", env.Probes[0].Tag)
	assert.False(t, env.Probes[1].Hit)
}

func TestRenderCommandTextToFile(t *testing.T) {
	doc := writeTempFile(t, "doc.html", testDocument)
	sheet := writeTempFile(t, "style.css", testSheet)
	out := filepath.Join(t.TempDir(), "report.txt")

	err := executeRender(t, doc, "--css", sheet, "-f", "text", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "render pass ")
	assert.Contains(t, string(data), "block <p>")
}

func TestRenderCommandWidthOverride(t *testing.T) {
	doc := writeTempFile(t, "doc.html", testDocument)
	out := filepath.Join(t.TempDir(), "report.json")

	err := executeRender(t, doc, "-f", "json", "-o", out, "-w", "500")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var env schemas.RenderEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, 500.0, env.ViewportWidth)
	require.NotNil(t, env.BoxTree)
	assert.Equal(t, 500.0, env.BoxTree.Width)
}

func TestRenderCommandParallelMatchesSerial(t *testing.T) {
	doc := writeTempFile(t, "doc.html", testDocument)
	sheet := writeTempFile(t, "style.css", testSheet)

	serialOut := filepath.Join(t.TempDir(), "serial.json")
	require.NoError(t, executeRender(t, doc, "--css", sheet, "-f", "json", "-o", serialOut))

	parallelOut := filepath.Join(t.TempDir(), "parallel.json")
	require.NoError(t, executeRender(t, doc, "--css", sheet, "-f", "json", "-o", parallelOut, "-j", "4"))

	var serial, parallel schemas.RenderEnvelope
	serialData, err := os.ReadFile(serialOut)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(serialData, &serial))
	parallelData, err := os.ReadFile(parallelOut)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(parallelData, &parallel))

	assert.Equal(t, serial.Stats, parallel.Stats)
	assert.Equal(t, serial.BoxTree, parallel.BoxTree)
}

func TestRenderCommandInvalidProbe(t *testing.T) {
	doc := writeTempFile(t, "doc.html", testDocument)

	err := executeRender(t, doc, "--probe", "oops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid probe")
}

func TestRenderCommandUnsupportedFormat(t *testing.T) {
	doc := writeTempFile(t, "doc.html", testDocument)

	err := executeRender(t, doc, "-f", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.format must be one of text, json, xml")
}

func TestRenderCommandMissingDocument(t *testing.T) {
	err := executeRender(t, filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open document")
}

func TestRenderCommandInvalidConfig(t *testing.T) {
	resetForTest(t)
	config.SetDefaults(viper.GetViper())
	viper.Set("render.parallelism", 0)

	doc := writeTempFile(t, "doc.html", testDocument)
	cmd := newRenderCmd()
	cmd.SetArgs([]string{doc})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.parallelism")
}
