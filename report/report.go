package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/zero-day-ai/lateral/chain"
	"github.com/zero-day-ai/lateral/scenario"
	"gopkg.in/yaml.v3"
)

// ErrScenarioMismatch is returned when a report is revalidated against a
// scenario lacking its start or target system.
var ErrScenarioMismatch = errors.New("report does not match scenario")

// Report is the exportable result of one chain search.
type Report struct {
	// ID is a unique identifier for the report.
	ID string `json:"id" yaml:"id"`

	// Scenario is the name of the scenario searched.
	Scenario string `json:"scenario" yaml:"scenario"`

	Start   string `json:"start" yaml:"start"`
	Target  string `json:"target" yaml:"target"`
	MaxHops int    `json:"max_hops" yaml:"max_hops"`

	// Filter is the CEL expression applied to the results, if any.
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"`

	// GeneratedAt is when the report was built.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Chains []Entry `json:"chains" yaml:"chains"`
}

// Entry is one chain in a report together with its replay verdict.
type Entry struct {
	// Index is the 1-based position of the chain in canonical order.
	Index int `json:"index" yaml:"index"`

	Key    string `json:"key" yaml:"key"`
	Length int    `json:"length" yaml:"length"`

	// Valid is the validator's verdict when the report was built.
	Valid bool `json:"valid" yaml:"valid"`

	// Reason describes the first violation of an invalid chain.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	Hops chain.Chain `json:"hops" yaml:"hops"`
}

// New builds a report for chains found from start to target. Every chain is
// replayed through the validator and its verdict recorded.
func New(sc *scenario.Scenario, start, target *scenario.System, maxHops int, chains []chain.Chain) *Report {
	r := &Report{
		ID:          uuid.New().String(),
		Scenario:    sc.Name(),
		Start:       start.Name,
		Target:      target.Name,
		MaxHops:     maxHops,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Chains:      make([]Entry, len(chains)),
	}
	for i, c := range chains {
		r.Chains[i] = Entry{
			Index:  i + 1,
			Key:    c.Key(),
			Length: len(c),
			Hops:   c.Clone(),
		}
	}
	r.validate(sc, start, target)
	return r
}

// Revalidate replays every chain of the report against sc, refreshing each
// entry's key and verdict, and returns the number of invalid chains.
func (r *Report) Revalidate(sc *scenario.Scenario) (int, error) {
	start, target := sc.System(r.Start), sc.System(r.Target)
	if start == nil || target == nil {
		return 0, fmt.Errorf("%w: scenario %q has no system %q or %q", ErrScenarioMismatch, sc.Name(), r.Start, r.Target)
	}
	for i := range r.Chains {
		e := &r.Chains[i]
		e.Key = e.Hops.Key()
		e.Length = len(e.Hops)
	}
	return r.validate(sc, start, target), nil
}

func (r *Report) validate(sc *scenario.Scenario, start, target *scenario.System) int {
	invalid := 0
	for i := range r.Chains {
		e := &r.Chains[i]
		e.Reason, e.Valid = "", true
		if reason, bad := chain.ValidateChainReason(sc, start, target, e.Hops); bad {
			e.Reason, e.Valid = reason, false
			invalid++
		}
	}
	return invalid
}

// ChainList returns the report's chains in order.
func (r *Report) ChainList() []chain.Chain {
	out := make([]chain.Chain, len(r.Chains))
	for i, e := range r.Chains {
		out[i] = e.Hops
	}
	return out
}

// Write encodes the report to w.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		return r.writeText(w)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func (r *Report) writeText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("Report %s\n", r.ID)
	ew.printf("Scenario: %s\n", r.Scenario)
	ew.printf("Start: %s  Target: %s  Max hops: %d\n", r.Start, r.Target, r.MaxHops)
	if r.Filter != "" {
		ew.printf("Filter: %s\n", r.Filter)
	}
	ew.printf("Chains: %d\n", len(r.Chains))

	for _, e := range r.Chains {
		verdict := "valid"
		if !e.Valid {
			verdict = "INVALID: " + e.Reason
		}
		ew.printf("\n#%d (%d hops) %s\n", e.Index, e.Length, verdict)
		for j, h := range e.Hops {
			ew.printf("  %d. %s\n", j+1, h)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// Read decodes a JSON or YAML report from r.
func Read(r io.Reader, format Format) (*Report, error) {
	var rep Report
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&rep); err != nil {
			return nil, fmt.Errorf("failed to parse JSON report: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&rep); err != nil {
			return nil, fmt.Errorf("failed to parse YAML report: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot read report format %q", format)
	}
	return &rep, nil
}

// Load reads the report stored at path. The format is detected by extension.
func Load(path string) (*Report, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()
	return Read(f, format)
}
