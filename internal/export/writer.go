package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/takak2166/sciwheel-export/internal/logger"
	"github.com/takak2166/sciwheel-export/internal/models"
)

const timestampLayout = "20060102150405"

// Filename builds sciwheel-project-{name}-{id}-{YYYYMMDDHHMMSS}-export.json
// from the local time. Path separators in the name are replaced so the file
// always lands in the output directory.
func Filename(project models.Project, now time.Time) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(project.Name)
	return fmt.Sprintf("sciwheel-project-%s-%d-%s-export.json", name, project.ID, now.Local().Format(timestampLayout))
}

// Encode serializes the references as an indented JSON array with sorted keys
func Encode(refs []models.ReferenceWithNotes) ([]byte, error) {
	if refs == nil {
		refs = []models.ReferenceWithNotes{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(refs); err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write stores the export in dir and returns the file path. An existing file
// with the same name is overwritten.
func Write(dir string, refs []models.ReferenceWithNotes, project models.Project, now time.Time) (string, error) {
	data, err := Encode(refs)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, Filename(project, now))
	logger.Status(fmt.Sprintf("Export output to: %s", path))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// ReadFile loads an export file back as a list of JSON objects. The CLI does
// not call it; the package and cmd tests use it to check written exports.
func ReadFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var refs []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&refs); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	logger.Debug("Read export file", map[string]interface{}{
		"filepath":         path,
		"references_count": len(refs),
	})
	return refs, nil
}
