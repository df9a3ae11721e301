package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

// Writer serializes output records. Format "jsonl" writes one record per
// line; "summary" collects records and writes a single rollup on Close.
type Writer struct {
	output  io.Writer
	format  string
	encoder *json.Encoder
	records []OutputRecord
	logger  *zerolog.Logger
}

func NewWriter(output io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case "jsonl", "summary":
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return &Writer{
		output:  output,
		format:  format,
		encoder: json.NewEncoder(output),
		logger:  logger,
	}, nil
}

func (w *Writer) Write(record OutputRecord) error {
	if w.format == "summary" {
		w.records = append(w.records, record)
		return nil
	}
	return w.encoder.Encode(record)
}

func (w *Writer) Close() error {
	if w.format != "summary" {
		return nil
	}
	return w.encoder.Encode(buildSummary(w.records))
}

// Summary is the cross-record rollup of one batch run.
type Summary struct {
	TotalRecords    int                        `json:"total_records"`
	Succeeded       int                        `json:"succeeded"`
	Failed          int                        `json:"failed"`
	ModelAverages   map[models.ModelID]float64 `json:"model_averages"`
	Recommendations map[models.ModelID]int     `json:"recommendation_counts"`
}

func buildSummary(records []OutputRecord) Summary {
	summary := Summary{
		TotalRecords:    len(records),
		ModelAverages:   make(map[models.ModelID]float64),
		Recommendations: make(map[models.ModelID]int),
	}

	sums := make(map[models.ModelID]float64)
	counts := make(map[models.ModelID]int)

	for _, record := range records {
		if record.Error != "" {
			summary.Failed++
			continue
		}
		summary.Succeeded++

		if record.Aggregate == nil {
			continue
		}
		for modelID, stats := range record.Aggregate.Models {
			sums[modelID] += stats.Average
			counts[modelID]++
		}
		for _, modelID := range record.Aggregate.RecommendedModels {
			summary.Recommendations[modelID]++
		}
	}

	for modelID, sum := range sums {
		summary.ModelAverages[modelID] = sum / float64(counts[modelID])
	}

	return summary
}
