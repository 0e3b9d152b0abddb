package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eualt/trustscore/internal/model"
)

func sampleReport() *model.Report {
	ceiling := 45.0
	scale := 0.75
	return &model.Report{
		GeneratedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ConfigFingerprint: "0123456789abcdef0123",
		Entries: []model.ScoredEntry{
			{
				ID:   "mailbox",
				Name: "Mailbox",
				Result: model.TrustResult{
					TrustScore:       8.4,
					TrustScoreStatus: model.StatusReady,
					TrustScoreBreakdown: &model.TrustScoreBreakdown{
						BaseClass: model.BaseClassEU,
						BaseScore: 70,
						Dimensions: map[model.Tier]model.DimensionBreakdown{
							model.TierSecurity:    {Max: 12, Effective: 6},
							model.TierGovernance:  {Max: 8, Signals: 2, Effective: 6},
							model.TierReliability: {Max: 6, Effective: 3},
							model.TierContract:    {Max: 6, Effective: 3},
						},
						SignalTotal:   2,
						FinalScore100: 84,
					},
				},
				Explanation: &model.Explanation{
					Provider: "ollama",
					Model:    "llama3.1",
					Summary:  "Open source lifts governance.",
					Warnings: []string{"cites URL outside the entry's sources: https://x.example"},
				},
				Links: []model.LinkStatus{
					{URL: "https://example.com/ok", IsAccessible: true, StatusCode: 200},
					{URL: "https://example.com/gone", IsDead: true, StatusCode: 404},
				},
			},
			{
				ID:   "adnet",
				Name: "Ad|Net",
				Result: model.TrustResult{
					TrustScore:       4.5,
					TrustScoreStatus: model.StatusReady,
					TrustScoreBreakdown: &model.TrustScoreBreakdown{
						BaseClass:      model.BaseClassEU,
						Dimensions:     map[model.Tier]model.DimensionBreakdown{},
						PenaltyTotal:   15,
						CapApplied:     &scale,
						CeilingApplied: &ceiling,
						AdSurveillance: true,
					},
				},
			},
			{
				ID:     "newcomer",
				Result: model.TrustResult{TrustScore: 7.8, TrustScoreStatus: model.StatusPending},
				Cached: true,
			},
		},
		Failures: []model.Failure{{ID: "broken", Error: "invalid evidence"}},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleReport(), true)

	checks := []string{
		"# Trust Score Report",
		"**Generated:** 2026-03-01 12:00:00 UTC",
		"**Config:** `0123456789ab`",
		"**Entries:** 3 (2 ready, 1 pending, 1 failed)",
		"| Mailbox (mailbox) | 8.4 | ready | eu | 6/12 | 6/8 | 3/6 | 3/6 | 0 | 2 | - |",
		`Ad\|Net (adnet)`,
		"45 (ad), cap ×0.75",
		"| newcomer | 7.8 | pending | - | - | - | - | - | - | - | - |",
		"## Explanations",
		"Open source lifts governance.",
		"_Generated by ollama (llama3.1)",
		"> Warning: cites URL outside",
		"## Unreachable Sources",
		"- https://example.com/gone: HTTP 404",
		"## Failures",
		"- `broken`: invalid evidence",
		"Pending scores are heuristic estimates",
	}
	for _, c := range checks {
		if !strings.Contains(md, c) {
			t.Errorf("markdown missing %q", c)
		}
	}
	if strings.Contains(md, "https://example.com/ok") {
		t.Error("accessible links should not be listed")
	}
}

func TestMarkdown_NoFooter(t *testing.T) {
	md := Markdown(sampleReport(), false)
	if strings.Contains(md, "Pending scores are heuristic estimates") {
		t.Error("footer rendered when disabled")
	}
}

func TestMarkdown_Empty(t *testing.T) {
	md := Markdown(&model.Report{}, false)
	if strings.Contains(md, "## Scores") {
		t.Error("empty report should have no score table")
	}
	if !strings.Contains(md, "**Entries:** 0") {
		t.Errorf("unexpected markdown: %s", md)
	}
}

func TestRenderJSON_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")
	r := NewRenderer(true)

	if err := r.RenderJSON(sampleReport(), path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var decoded struct {
		Entries []map[string]json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(decoded.Entries))
	}

	var pending map[string]json.RawMessage
	if err := json.Unmarshal(decoded.Entries[2]["result"], &pending); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if _, ok := pending["trustScoreBreakdown"]; ok {
		t.Error("pending result should omit its breakdown")
	}
	if _, ok := decoded.Entries[2]["Cached"]; ok {
		t.Error("cache flag should not be serialized")
	}
}

func TestRenderJSON_Stdout(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(false)
	r.stdout = &buf

	if err := r.RenderJSON(&model.Report{ConfigFingerprint: "abc"}, "-"); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"configFingerprint": "abc"`) {
		t.Errorf("unexpected stdout: %s", buf.String())
	}
}

func TestRenderMarkdown_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	if err := NewRenderer(false).RenderMarkdown(sampleReport(), path); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Trust Score Report") {
		t.Errorf("unexpected file content: %s", data)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"✓ Scored 3 entries (2 ready, 1 pending, 1 from cache)",
		"Mean score: 6.9",
		"Highest:    8.4  mailbox",
		"Lowest:     4.5  adnet",
		"✗ 1 entries failed:",
		"- broken: invalid evidence",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
