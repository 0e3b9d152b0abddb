package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/eualt/trustscore/internal/model"
)

// Renderer writes reports as JSON and Markdown
type Renderer struct {
	includeFooter bool
	stdout        io.Writer
}

// NewRenderer creates a renderer. The footer explains how to read the scores.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		stdout:        os.Stdout,
	}
}

// RenderJSON writes the report as indented JSON; a path of "-" writes to stdout
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	return r.write(path, data)
}

// RenderMarkdown writes the per-entry score table
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return r.write(path, []byte(Markdown(report, r.includeFooter)))
}

func (r *Renderer) write(path string, data []byte) error {
	if path == "-" {
		_, err := r.stdout.Write(data)
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
