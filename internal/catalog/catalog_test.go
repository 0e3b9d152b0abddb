package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/eualt/trustscore/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_JSONList(t *testing.T) {
	path := writeFile(t, "catalog.json", `[
  {"id": "mailbox", "name": "Mailbox", "country": "de", "scoringMetadata": {}},
  {"id": "search", "country": "us", "tags": ["privacy"]}
]`)

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].IsVetted() {
		t.Error("expected mailbox to be vetted")
	}
	if entries[1].IsVetted() {
		t.Error("expected search to be non-vetted")
	}
}

func TestLoad_JSONObject(t *testing.T) {
	path := writeFile(t, "catalog.json", `{"entries": [{
  "id": "cloud",
  "country": "fr",
  "reservations": [
    {"id": "r1", "text": "Outage", "severity": "moderate", "penalty": {"tier": "reliability", "amount": 2}}
  ],
  "positiveSignals": [
    {"id": "s1", "text": "ISO 27001", "dimension": "security", "amount": 1.5}
  ]
}]}`)

	entries, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if len(e.Reservations) != 1 || e.Reservations[0].Penalty == nil {
		t.Fatalf("expected one reservation with a penalty, got %+v", e.Reservations)
	}
	if e.Reservations[0].Penalty.Tier != model.TierReliability || e.Reservations[0].Penalty.Amount != 2 {
		t.Errorf("unexpected penalty %+v", *e.Reservations[0].Penalty)
	}
	if len(e.PositiveSignals) != 1 || e.PositiveSignals[0].Amount != 1.5 {
		t.Errorf("unexpected signals %+v", e.PositiveSignals)
	}
}

func TestLoad_YAML(t *testing.T) {
	list := writeFile(t, "catalog.yaml", `
- id: mailbox
  country: de
  openSourceLevel: full
  selfHostable: true
  reservations:
    - id: r1
      text: Data breach
      severity: major
      date: "2024-03-01"
      exemptFromCap: true
      penalty:
        tier: security
        amount: 4
  scoringMetadata:
    baseClassOverride: eu
    isAdSurveillance: false
`)
	doc := writeFile(t, "catalog.yml", `
entries:
  - id: a
  - id: b
`)

	entries, err := Load(list)
	if err != nil {
		t.Fatalf("Load list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.OpenSourceLevel != model.OpenSourceFull || !e.SelfHostable {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.ScoringMetadata == nil || e.ScoringMetadata.BaseClassOverride != "eu" {
		t.Errorf("expected scoring metadata with override, got %+v", e.ScoringMetadata)
	}
	r := e.Reservations[0]
	if !r.ExemptFromCap || r.Date != "2024-03-01" || r.Penalty.Tier != model.TierSecurity {
		t.Errorf("unexpected reservation %+v", r)
	}

	entries, err = Load(doc)
	if err != nil {
		t.Fatalf("Load document failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		desc    string
		name    string
		content string
		wantErr string
	}{
		{"missing id", "c.json", `[{"name": "anonymous"}]`, "has no id"},
		{"duplicate id", "c.yaml", "- id: a\n- id: a\n", "duplicate id"},
		{"bad extension", "c.txt", "a", "unsupported file extension"},
		{"malformed json", "c.json", `[{"id": }]`, "parse catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.name, tt.content))
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadEntry(t *testing.T) {
	entry, err := LoadEntry(writeFile(t, "entry.yaml", "id: notes\ncountry: ch\ntags: [offline]\n"))
	if err != nil {
		t.Fatalf("LoadEntry failed: %v", err)
	}
	if entry.ID != "notes" || entry.Country != "ch" || !reflect.DeepEqual(entry.Tags, []string{"offline"}) {
		t.Errorf("unexpected entry %+v", entry)
	}

	if _, err := LoadEntry(writeFile(t, "entry.json", `{"country": "ch"}`)); err == nil {
		t.Error("expected error for entry without id")
	}
}

func TestFilter(t *testing.T) {
	all := []model.Entry{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	kept, missing := Filter(all, []string{"c", "a", "zzz"})
	if len(kept) != 2 || kept[0].ID != "a" || kept[1].ID != "c" {
		t.Errorf("expected a and c in catalog order, got %+v", kept)
	}
	if !reflect.DeepEqual(missing, []string{"zzz"}) {
		t.Errorf("expected zzz missing, got %v", missing)
	}

	kept, missing = Filter(all, nil)
	if len(kept) != 3 || missing != nil {
		t.Errorf("expected everything kept, got %+v %v", kept, missing)
	}
}

func TestReadIDs(t *testing.T) {
	path := writeFile(t, "ids.txt", "mailbox\n# comment\nsearch\n   \nmailbox\n  cloud  ")

	ids, err := ReadIDs(path)
	if err != nil {
		t.Fatalf("ReadIDs failed: %v", err)
	}

	expected := []string{"mailbox", "search", "cloud"}
	if !reflect.DeepEqual(ids, expected) {
		t.Errorf("expected %v, got %v", expected, ids)
	}
}

func TestReadIDs_NonExistent(t *testing.T) {
	if _, err := ReadIDs("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
