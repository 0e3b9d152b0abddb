package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eualt/trustscore/internal/model"
)

type document struct {
	Entries []model.Entry `json:"entries" yaml:"entries"`
}

// Load reads every entry in path. The file is either a list of entries or an
// object with an "entries" list. Entries must carry unique ids.
func Load(path string) ([]model.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	entries, err := decodeEntries(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("catalog %s: entry %d has no id", path, i)
		}
		if first, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("catalog %s: duplicate id %q (entries %d and %d)", path, e.ID, first, i)
		}
		seen[e.ID] = i
	}

	return entries, nil
}

// LoadEntry reads a file holding a single entry
func LoadEntry(path string) (model.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Entry{}, fmt.Errorf("read entry: %w", err)
	}

	var entry model.Entry
	switch format(path) {
	case "json":
		err = json.Unmarshal(data, &entry)
	case "yaml":
		err = yaml.Unmarshal(data, &entry)
	default:
		err = fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return model.Entry{}, fmt.Errorf("parse entry %s: %w", path, err)
	}

	if strings.TrimSpace(entry.ID) == "" {
		return model.Entry{}, fmt.Errorf("entry %s has no id", path)
	}
	return entry, nil
}

// Filter keeps the entries named in ids, in catalog order. An empty ids keeps everything.
// Ids that match nothing are returned as missing.
func Filter(entries []model.Entry, ids []string) (kept []model.Entry, missing []string) {
	if len(ids) == 0 {
		return entries, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	found := make(map[string]bool, len(ids))
	for _, e := range entries {
		if want[e.ID] {
			kept = append(kept, e)
			found[e.ID] = true
		}
	}
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return kept, missing
}

// ReadIDs reads entry ids from a file (one per line)
func ReadIDs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			ids = append(ids, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}

func decodeEntries(path string, data []byte) ([]model.Entry, error) {
	switch format(path) {
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var list []model.Entry
			err := json.Unmarshal(trimmed, &list)
			return list, err
		}
		var doc document
		err := json.Unmarshal(trimmed, &doc)
		return doc.Entries, err

	case "yaml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, err
		}
		if len(node.Content) == 0 {
			return nil, nil
		}
		root := node.Content[0]
		if root.Kind == yaml.SequenceNode {
			var list []model.Entry
			err := root.Decode(&list)
			return list, err
		}
		var doc document
		err := root.Decode(&doc)
		return doc.Entries, err
	}

	return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}
