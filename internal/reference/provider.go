package reference

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

// minMatchLen guards the substring scan against noise from very short
// drug names.
const minMatchLen = 4

// Provider exposes the two read-only lookup tables and the few-shot example
// bank. All lookups are advisory: absence from a table never implies safety,
// and no check result alters a weighted score.
type Provider struct {
	withdrawnDrugs []WithdrawnDrug
	procedures     []Procedure
	examples       *ExampleBank
	rng            *rand.Rand
	logger         *zerolog.Logger
}

// NewProvider builds a provider over already-constructed tables. Load is
// the production path; this constructor exists for tests and embedders.
func NewProvider(drugs []WithdrawnDrug, procedures []Procedure, examples *ExampleBank, rng *rand.Rand, logger *zerolog.Logger) *Provider {
	return &Provider{
		withdrawnDrugs: drugs,
		procedures:     procedures,
		examples:       examples,
		rng:            rng,
		logger:         logger,
	}
}

// CheckWithdrawnDrug scans text for mentions of withdrawn/refused drugs by
// case-insensitive substring match on drug name or active substance.
func (p *Provider) CheckWithdrawnDrug(text string) models.DrugCheck {
	lower := strings.ToLower(text)

	var matches []models.DrugMatch
	for _, drug := range p.withdrawnDrugs {
		name := strings.ToLower(drug.Name)
		substance := strings.ToLower(drug.ActiveSubstance)

		nameHit := len(name) >= minMatchLen && strings.Contains(lower, name)
		substanceHit := len(substance) >= minMatchLen && strings.Contains(lower, substance)
		if !nameHit && !substanceHit {
			continue
		}

		matched := name
		if !nameHit {
			matched = substance
		}

		matches = append(matches, models.DrugMatch{
			DrugName:        drug.Name,
			ActiveSubstance: drug.ActiveSubstance,
			Status:          drug.Status,
			WithdrawalDate:  drug.WithdrawalDate,
			RefusalDate:     drug.RefusalDate,
			MatchedText:     matched,
		})
	}

	return models.DrugCheck{
		HasIssues: len(matches) > 0,
		Matches:   matches,
	}
}

// CheckProcedureMention scans text for known procedures by keyword or name
// substring.
func (p *Provider) CheckProcedureMention(text string) models.ProcedureCheck {
	lower := strings.ToLower(text)

	var matches []models.ProcedureMatch
	for _, proc := range p.procedures {
		keyword := strings.ToLower(proc.Keyword)
		name := strings.ToLower(proc.Name)

		if !strings.Contains(lower, keyword) && !strings.Contains(lower, name) {
			continue
		}

		matches = append(matches, models.ProcedureMatch{
			Name:     proc.Name,
			Category: proc.Category,
			Code:     proc.Code,
		})
	}

	return models.ProcedureCheck{
		HasProcedures: len(matches) > 0,
		Matches:       matches,
	}
}

// DrugInfo looks up a single drug record by name or active substance.
func (p *Provider) DrugInfo(drugName string) (WithdrawnDrug, bool) {
	lower := strings.ToLower(drugName)

	for _, drug := range p.withdrawnDrugs {
		if strings.Contains(strings.ToLower(drug.Name), lower) ||
			strings.Contains(strings.ToLower(drug.ActiveSubstance), lower) {
			return drug, true
		}
	}

	return WithdrawnDrug{}, false
}

// FormatForPrompt renders a bounded, deterministic excerpt of the two
// tables for embedding in scoring prompts. The rendering is advisory
// context; the scorer instructs the model that absence from the list does
// not imply safety.
func (p *Provider) FormatForPrompt(maxDrugs, maxProcedures int) string {
	var out []string

	if len(p.withdrawnDrugs) > 0 && maxDrugs > 0 {
		shown := min(maxDrugs, len(p.withdrawnDrugs))
		out = append(out,
			"=== WITHDRAWN/REFUSED DRUGS REFERENCE ===",
			fmt.Sprintf("(Showing %d of %d total)\n", shown, len(p.withdrawnDrugs)),
		)

		for _, drug := range p.withdrawnDrugs[:shown] {
			line := "- " + drug.Name
			if drug.ActiveSubstance != "" {
				line += fmt.Sprintf(" (%s)", drug.ActiveSubstance)
			}
			line += ": Status=" + drug.Status
			if drug.WithdrawalDate != "" {
				line += ", Withdrawn=" + drug.WithdrawalDate
			}
			out = append(out, line)
		}
	}

	if len(p.procedures) > 0 && maxProcedures > 0 {
		shown := min(maxProcedures, len(p.procedures))
		out = append(out,
			"\n=== COMMON MEDICAL PROCEDURES REFERENCE ===",
			fmt.Sprintf("(Showing %d of %d total)\n", shown, len(p.procedures)),
		)

		byCategory := make(map[string][]Procedure)
		for _, proc := range p.procedures[:shown] {
			byCategory[proc.Category] = append(byCategory[proc.Category], proc)
		}

		categories := make([]string, 0, len(byCategory))
		for category := range byCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		for _, category := range categories {
			out = append(out, "\n"+category+":")
			procs := byCategory[category]
			if len(procs) > 5 {
				procs = procs[:5]
			}
			for _, proc := range procs {
				out = append(out, "  - "+proc.Name)
			}
		}
	}

	return strings.Join(out, "\n")
}

// Stats summarizes the loaded tables for startup logging.
func (p *Provider) Stats() map[string]int {
	categories := make(map[string]bool)
	for _, proc := range p.procedures {
		categories[proc.Category] = true
	}

	stats := map[string]int{
		"withdrawn_drugs":      len(p.withdrawnDrugs),
		"common_procedures":    len(p.procedures),
		"procedure_categories": len(categories),
	}
	if p.examples != nil {
		stats["direct_examples"] = len(p.examples.Direct)
		stats["indirect_examples"] = len(p.examples.Indirect)
		stats["conversational_examples"] = len(p.examples.Conversational)
	}
	return stats
}
