package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/medbench/medbench/internal/models"
	"github.com/rs/zerolog"
)

// InputRecord is one parsed line of the JSONL input. A malformed line
// carries its parse error and line number instead of an event.
type InputRecord struct {
	Event      models.BenchmarkEvent
	LineNumber int
	Error      error
}

type Reader struct {
	input  io.Reader
	logger *zerolog.Logger
}

func NewReader(input io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		input:  input,
		logger: logger,
	}
}

// ReadAll streams records line by line. Blank lines are skipped; parse
// errors are emitted as records so the caller decides whether to stop.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.input)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}
			if err := json.Unmarshal([]byte(line), &record.Event); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
			} else if record.Event.Question == "" {
				record.Error = fmt.Errorf("line %d: question must not be empty", lineNumber)
			}

			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to read input")
		}
	}()

	return out
}
