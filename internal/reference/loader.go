package reference

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	emaFileName     = "medicines_output_medicines_en.xlsx"
	icdFileName     = "icd10pcs_order_2026.txt"
	examplesName    = "few_shot_examples.json"
	emaHeaderRow    = 9 // 1-based; the EMA export carries a preamble block
	maxPerCategory  = 10
	dedupePrefixLen = 50
)

// WithdrawnDrug is one regulator record of a refused/withdrawn medicine.
type WithdrawnDrug struct {
	Name            string
	ActiveSubstance string
	Status          string
	TherapeuticArea string
	WithdrawalDate  string
	RefusalDate     string
}

// Procedure is one curated ICD-10-PCS procedure record.
type Procedure struct {
	Category    string
	Code        string
	Name        string
	Description string
	Keyword     string
}

// Curated keyword→category table used to extract a bounded procedure set
// from the full ICD-10-PCS registry.
var procedureKeywords = map[string][]string{
	"Cardiac/Cardiovascular": {
		"bypass coronary", "coronary artery bypass",
		"angioplasty", "percutaneous coronary",
		"pacemaker insertion", "defibrillator",
		"heart valve", "valve replacement",
		"cardiac catheterization",
		"coronary stent",
	},
	"General Surgery": {
		"resection of appendix", "appendectomy",
		"excision of gallbladder", "cholecystectomy",
		"repair of hernia", "herniorrhaphy",
		"excision of breast", "mastectomy",
		"excision of thyroid", "thyroidectomy",
		"excision of spleen", "splenectomy",
	},
	"Gastrointestinal": {
		"inspection of colon", "colonoscopy",
		"inspection of esophagus", "endoscopy",
		"resection of colon", "colectomy",
		"excision of stomach", "gastrectomy",
	},
	"Orthopedic": {
		"replacement of hip", "hip arthroplasty",
		"replacement of knee", "knee arthroplasty",
		"fusion of lumbar", "spinal fusion",
		"release of lumbar", "laminectomy",
		"repair of fracture",
	},
	"OB/GYN": {
		"resection of uterus", "hysterectomy",
		"extraction of products of conception", "cesarean",
		"resection of ovary", "oophorectomy",
		"occlusion of fallopian", "tubal ligation",
	},
	"Urologic": {
		"resection of prostate", "prostatectomy",
		"resection of kidney", "nephrectomy",
		"inspection of bladder", "cystoscopy",
		"extirpation in kidney", "lithotripsy",
	},
	"Neurosurgery": {
		"drainage of cerebral", "craniotomy",
		"excision of vertebral", "discectomy",
		"release of spinal cord",
	},
}

// Load builds the provider from a references directory. Each table that
// fails to load degrades to empty: scoring proceeds with the corresponding
// context omitted, never aborts.
func Load(dir string, rng *rand.Rand, logger *zerolog.Logger) *Provider {
	p := &Provider{rng: rng, logger: logger}

	drugs, err := loadEMAWorkbook(filepath.Join(dir, emaFileName))
	if err != nil {
		logger.Warn().Err(err).Msg("EMA withdrawn-drug table unavailable")
	} else {
		p.withdrawnDrugs = drugs
	}

	procedures, err := loadICDRegistry(filepath.Join(dir, icdFileName))
	if err != nil {
		logger.Warn().Err(err).Msg("ICD-10-PCS procedure table unavailable")
	} else {
		p.procedures = procedures
	}

	examples, err := loadExampleBank(filepath.Join(dir, examplesName))
	if err != nil {
		logger.Warn().Err(err).Msg("few-shot example bank unavailable")
	} else {
		p.examples = examples
	}

	logger.Info().
		Int("withdrawn_drugs", len(p.withdrawnDrugs)).
		Int("procedures", len(p.procedures)).
		Msg("reference data loaded")

	return p
}

// loadEMAWorkbook reads the EMA medicines export. Only human medicines with
// a refused/withdrawn-family status or an explicit withdrawal date are kept.
func loadEMAWorkbook(path string) ([]WithdrawnDrug, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open EMA workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("EMA workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read EMA rows: %w", err)
	}
	if len(rows) <= emaHeaderRow {
		return nil, fmt.Errorf("EMA workbook shorter than header row")
	}

	col := indexColumns(rows[emaHeaderRow-1])
	withdrawnStatuses := map[string]bool{
		"Refused": true, "Withdrawn": true, "Suspended": true, "Revoked": true, "Lapsed": true,
	}

	var drugs []WithdrawnDrug
	for _, row := range rows[emaHeaderRow:] {
		if cell(row, col["Category"]) != "Human" {
			continue
		}

		status := cell(row, col["Medicine status"])
		withdrawalDate := cell(row, col["Withdrawal / expiry / revocation / lapse of marketing authorisation date"])
		if !withdrawnStatuses[status] && withdrawalDate == "" {
			continue
		}

		drugs = append(drugs, WithdrawnDrug{
			Name:            cellOr(row, col["Name of medicine"], "Unknown"),
			ActiveSubstance: cellOr(row, col["Active substance"], "Unknown"),
			Status:          cellOr(row, col["Medicine status"], "Unknown"),
			TherapeuticArea: cell(row, col["Therapeutic area (MeSH)"]),
			WithdrawalDate:  withdrawalDate,
			RefusalDate:     cell(row, col["Refusal of marketing authorisation date"]),
		})
	}

	return drugs, nil
}

func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellOr(row []string, i int, fallback string) string {
	if v := cell(row, i); v != "" {
		return v
	}
	return fallback
}

// loadICDRegistry extracts the curated procedure subset from the flat
// ICD-10-PCS order file, bounded per category and deduplicated on a
// description prefix.
func loadICDRegistry(path string) ([]Procedure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ICD registry: %w", err)
	}
	defer f.Close()

	var procedures []Procedure
	seen := make(map[string]bool)
	perCategory := make(map[string]int)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			continue
		}

		code := parts[1]
		description := strings.Join(parts[3:], " ")
		descLower := strings.ToLower(description)

		for category, keywords := range procedureKeywords {
			if perCategory[category] >= maxPerCategory {
				continue
			}
			for _, keyword := range keywords {
				if !strings.Contains(descLower, keyword) {
					continue
				}

				prefix := description
				if len(prefix) > dedupePrefixLen {
					prefix = prefix[:dedupePrefixLen]
				}
				if seen[prefix] {
					break
				}
				seen[prefix] = true

				name := description
				if comma := strings.Index(name, ","); comma > 0 {
					name = name[:comma]
				}
				if len(description) > 200 {
					description = description[:200]
				}

				procedures = append(procedures, Procedure{
					Category:    category,
					Code:        code,
					Name:        name,
					Description: description,
					Keyword:     keyword,
				})
				perCategory[category]++
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan ICD registry: %w", err)
	}

	return procedures, nil
}

func loadExampleBank(path string) (*ExampleBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read example bank: %w", err)
	}

	var bank ExampleBank
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("decode example bank: %w", err)
	}

	return &bank, nil
}
