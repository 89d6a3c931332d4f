// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pick

import (
	"testing"
	"time"

	"github.com/pdiddy/litscout/pkg/types"
)

func paper(id string, score float64, firstSeen time.Time) types.Paper {
	return types.Paper{ID: id, Title: "title " + id, Score: score, Scored: true, FirstSeen: firstSeen}
}

func ids(papers []types.Paper) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelectOrdering(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	papers := []types.Paper{
		paper("c", 10, base),
		paper("a", 30, base),
		paper("b", 20, base),
		// Same score: more recent first-seen wins.
		paper("d", 20, base.Add(time.Hour)),
		// Same score and first-seen: identity ascending.
		paper("f", 10, base),
		paper("e", 10, base),
	}

	sel := Select(papers, types.PickConfig{Selected: 3, RunnerUp: 3})

	wantSelected := []string{"a", "d", "b"}
	if !equal(ids(sel.Selected), wantSelected) {
		t.Errorf("Selected = %v, want %v", ids(sel.Selected), wantSelected)
	}
	wantRunnerUp := []string{"c", "e", "f"}
	if !equal(ids(sel.RunnerUp), wantRunnerUp) {
		t.Errorf("RunnerUp = %v, want %v", ids(sel.RunnerUp), wantRunnerUp)
	}
}

func TestSelectDisjointAndBounded(t *testing.T) {
	base := time.Now().UTC()
	var papers []types.Paper
	for i := 0; i < 20; i++ {
		papers = append(papers, paper(string(rune('a'+i)), float64(i), base))
	}

	sel := Select(papers, types.PickConfig{Selected: 7, RunnerUp: 7})

	if len(sel.Selected) > 7 {
		t.Errorf("selected len = %d, want <= 7", len(sel.Selected))
	}
	seen := make(map[string]bool)
	for _, p := range sel.Selected {
		seen[p.ID] = true
	}
	for _, p := range sel.RunnerUp {
		if seen[p.ID] {
			t.Errorf("paper %s appears in both selected and runner-up", p.ID)
		}
	}
}

func TestSelectTruncatesRunnerUpNeverPads(t *testing.T) {
	base := time.Now().UTC()
	papers := []types.Paper{
		paper("a", 3, base),
		paper("b", 2, base),
		paper("c", 1, base),
	}

	sel := Select(papers, types.PickConfig{Selected: 2, RunnerUp: 7})
	if len(sel.Selected) != 2 {
		t.Errorf("selected len = %d, want 2", len(sel.Selected))
	}
	if len(sel.RunnerUp) != 1 {
		t.Errorf("runner-up len = %d, want 1", len(sel.RunnerUp))
	}

	// Fewer papers than K: everything selected, no padding anywhere.
	sel = Select(papers[:1], types.PickConfig{Selected: 7, RunnerUp: 7})
	if len(sel.Selected) != 1 || len(sel.RunnerUp) != 0 {
		t.Errorf("got %d selected, %d runner-up; want 1, 0", len(sel.Selected), len(sel.RunnerUp))
	}
}

func TestSelectCollapsesDuplicateTitles(t *testing.T) {
	base := time.Now().UTC()
	a := paper("10.1/abc", 30, base)
	a.Title = "Minimum Wages and  Firm Dynamics"
	b := paper("hash-fallback", 10, base)
	b.Title = "minimum wages and firm dynamics"

	sel := Select([]types.Paper{a, b}, types.PickConfig{Selected: 7, RunnerUp: 7})
	if len(sel.Selected) != 1 {
		t.Fatalf("selected len = %d, want 1 after title dedup", len(sel.Selected))
	}
	if sel.Selected[0].ID != "10.1/abc" {
		t.Errorf("kept %s, want the higher-scoring entry", sel.Selected[0].ID)
	}
}

func TestSelectInputUnmodified(t *testing.T) {
	base := time.Now().UTC()
	papers := []types.Paper{paper("b", 1, base), paper("a", 2, base)}
	Select(papers, types.PickConfig{})
	if papers[0].ID != "b" {
		t.Error("Select reordered its input slice")
	}
}
