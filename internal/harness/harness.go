package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/specdiff/internal/ir"
	"github.com/roach88/specdiff/internal/pipeline"
	"github.com/roach88/specdiff/internal/spec"
)

// DefaultBudget is the concurrency budget used when a scenario sets none.
// It does not depend on the core count, so reports are the same everywhere.
const DefaultBudget = 4

// Run executes a scenario through the pipeline and evaluates its
// expectations. An error is returned only when the scenario could not be
// executed: the spec failed to load or the pipeline hit a fatal fault.
func Run(scenario *Scenario) (*Result, error) {
	snap, err := spec.Load(scenario.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec: %w", err)
	}

	input, err := RenderInput(scenario.Input)
	if err != nil {
		return nil, err
	}

	budget := scenario.Budget
	if budget == 0 {
		budget = DefaultBudget
	}
	p, err := pipeline.New(snap, pipeline.Config{
		Budget: budget,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	stats, err := p.Run(context.Background(), strings.NewReader(input), &out)
	if err != nil {
		return nil, fmt.Errorf("pipeline failed: %w", err)
	}

	envs, err := decodeEnvelopes(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to decode output: %w", err)
	}
	sortEnvelopes(envs)

	result := NewResult()
	result.Findings = envs
	result.Stats = stats

	for _, msg := range evaluateExpect(result, scenario.Expect) {
		result.AddError(msg)
	}
	for _, msg := range EvaluateAssertions(result.Findings, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// RenderInput renders scenario records as newline-delimited pipeline input.
func RenderInput(records []InputRecord) (string, error) {
	var b strings.Builder
	for i, rec := range records {
		if rec.Raw != "" {
			b.WriteString(rec.Raw)
			b.WriteByte('\n')
			continue
		}

		line, err := json.Marshal(ir.TaggedInteraction{
			Interaction: rec.interaction(),
			Tags:        ir.Tags(rec.Tags),
		})
		if err != nil {
			return "", fmt.Errorf("input[%d]: %w", i, err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (rec InputRecord) interaction() ir.HTTPInteraction {
	in := ir.HTTPInteraction{
		Request: ir.HTTPRequest{
			Method: rec.Method,
			Path:   rec.Path,
			Body:   body(rec.RequestContentType, rec.RequestBody),
		},
		Response: ir.HTTPResponse{
			StatusCode: rec.Status,
			Body:       body(rec.ResponseContentType, rec.ResponseBody),
		},
	}
	if rec.Query != "" {
		q := rec.Query
		in.Request.Query = ir.ArbitraryData{AsText: &q}
	}
	return in
}

// body builds a captured body. JSON content types carry the text as their
// JSON rendering; anything else is captured as plain text.
func body(contentType, text string) ir.Body {
	if text == "" && contentType == "" {
		return ir.Body{}
	}
	if contentType == "" {
		contentType = "application/json"
	}
	if ir.IsJSONMediaType(ir.MediaType(contentType)) {
		return ir.Body{ContentType: contentType, Value: ir.ArbitraryData{AsJSONString: &text}}
	}
	return ir.Body{ContentType: contentType, Value: ir.ArbitraryData{AsText: &text}}
}

func decodeEnvelopes(data []byte) ([]ir.Envelope, error) {
	envs := []ir.Envelope{}
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var env ir.Envelope
		if err := dec.Decode(&env); err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// sortEnvelopes orders envelopes by report line, then fingerprint.
func sortEnvelopes(envs []ir.Envelope) {
	sort.SliceStable(envs, func(i, j int) bool {
		li, lj := ReportLine(envs[i]), ReportLine(envs[j])
		if li != lj {
			return li < lj
		}
		return envs[i].Fingerprint < envs[j].Fingerprint
	})
}
