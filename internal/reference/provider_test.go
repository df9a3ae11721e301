package reference

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func testProvider(drugs []WithdrawnDrug, procedures []Procedure, examples *ExampleBank) *Provider {
	return NewProvider(drugs, procedures, examples, rand.New(rand.NewSource(1)), newTestLogger())
}

func TestCheckWithdrawnDrug_MatchByName(t *testing.T) {
	p := testProvider([]WithdrawnDrug{
		{Name: "Vioxx", ActiveSubstance: "rofecoxib", Status: "Withdrawn"},
	}, nil, nil)

	check := p.CheckWithdrawnDrug("You could try VIOXX for the pain.")

	if !check.HasIssues {
		t.Fatal("expected a match")
	}
	if len(check.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(check.Matches))
	}
	if check.Matches[0].DrugName != "Vioxx" {
		t.Errorf("expected Vioxx, got %s", check.Matches[0].DrugName)
	}
	if check.Matches[0].MatchedText != "vioxx" {
		t.Errorf("expected lower-cased matched text, got %q", check.Matches[0].MatchedText)
	}
}

func TestCheckWithdrawnDrug_MatchBySubstance(t *testing.T) {
	p := testProvider([]WithdrawnDrug{
		{Name: "Vioxx", ActiveSubstance: "rofecoxib", Status: "Withdrawn"},
	}, nil, nil)

	check := p.CheckWithdrawnDrug("Rofecoxib was popular for arthritis.")

	if !check.HasIssues {
		t.Fatal("expected a match on active substance")
	}
	if check.Matches[0].MatchedText != "rofecoxib" {
		t.Errorf("expected substance as matched text, got %q", check.Matches[0].MatchedText)
	}
}

func TestCheckWithdrawnDrug_ShortNameGuard(t *testing.T) {
	p := testProvider([]WithdrawnDrug{
		{Name: "ASA", ActiveSubstance: "", Status: "Withdrawn"},
	}, nil, nil)

	if check := p.CheckWithdrawnDrug("This mentions asa directly."); check.HasIssues {
		t.Error("names shorter than 4 chars must not match")
	}
}

func TestCheckWithdrawnDrug_NoMatch(t *testing.T) {
	p := testProvider([]WithdrawnDrug{
		{Name: "Vioxx", Status: "Withdrawn"},
	}, nil, nil)

	if check := p.CheckWithdrawnDrug("Plenty of rest and fluids."); check.HasIssues {
		t.Error("expected no match")
	}
}

func TestCheckProcedureMention(t *testing.T) {
	p := testProvider(nil, []Procedure{
		{Name: "Colonoscopy", Category: "Endoscopy", Code: "0DJD8ZZ", Keyword: "colonoscopy"},
	}, nil)

	check := p.CheckProcedureMention("A routine colonoscopy is recommended at 45.")
	if !check.HasProcedures {
		t.Fatal("expected procedure match")
	}
	if check.Matches[0].Category != "Endoscopy" {
		t.Errorf("expected category carried through, got %s", check.Matches[0].Category)
	}
}

func TestDrugInfo(t *testing.T) {
	p := testProvider([]WithdrawnDrug{
		{Name: "Vioxx", ActiveSubstance: "rofecoxib", Status: "Withdrawn"},
	}, nil, nil)

	drug, ok := p.DrugInfo("vioxx")
	if !ok || drug.Name != "Vioxx" {
		t.Errorf("expected lookup by name, got %+v ok=%v", drug, ok)
	}

	if _, ok := p.DrugInfo("thalidomide"); ok {
		t.Error("expected unknown drug to miss")
	}
}

func TestFormatForPrompt_Bounds(t *testing.T) {
	drugs := make([]WithdrawnDrug, 30)
	for i := range drugs {
		drugs[i] = WithdrawnDrug{Name: "Drug" + strings.Repeat("x", i+1), Status: "Withdrawn"}
	}

	p := testProvider(drugs, nil, nil)

	out := p.FormatForPrompt(10, 0)

	if !strings.Contains(out, "=== WITHDRAWN/REFUSED DRUGS REFERENCE ===") {
		t.Error("expected drugs header")
	}
	if !strings.Contains(out, "(Showing 10 of 30 total)") {
		t.Errorf("expected bounded excerpt note, got %q", out)
	}
	if strings.Count(out, "- Drug") != 10 {
		t.Errorf("expected exactly 10 drug lines, got %d", strings.Count(out, "- Drug"))
	}
}

func TestFormatForPrompt_Empty(t *testing.T) {
	p := testProvider(nil, nil, nil)

	if out := p.FormatForPrompt(10, 10); out != "" {
		t.Errorf("expected empty rendering for empty tables, got %q", out)
	}
}

func TestStats(t *testing.T) {
	p := testProvider(
		[]WithdrawnDrug{{Name: "Vioxx"}},
		[]Procedure{
			{Name: "Colonoscopy", Category: "Endoscopy"},
			{Name: "MRI", Category: "Imaging"},
		},
		&ExampleBank{Direct: []ScoredExample{{Question: "q"}}},
	)

	stats := p.Stats()
	if stats["withdrawn_drugs"] != 1 {
		t.Errorf("expected 1 drug, got %d", stats["withdrawn_drugs"])
	}
	if stats["procedure_categories"] != 2 {
		t.Errorf("expected 2 categories, got %d", stats["procedure_categories"])
	}
	if stats["direct_examples"] != 1 {
		t.Errorf("expected 1 direct example, got %d", stats["direct_examples"])
	}
}
