package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recstore/internal/record"
)

// Scenario is a sequence of operations with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against one fresh service.
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Exactly one of Put, Get and Race is set.
type Step struct {
	Put  *record.Record `yaml:"put,omitempty"`
	Get  string         `yaml:"get,omitempty"`
	Race *RaceStep      `yaml:"race,omitempty"`

	// Expect is the expected outcome. Empty means ExpectOK.
	Expect string `yaml:"expect,omitempty"`

	// Record is the record a successful get must return. Only valid on get
	// steps expecting ok; when omitted the returned record is traced but not
	// checked.
	Record *record.Record `yaml:"record,omitempty"`
}

// RaceStep issues Writers concurrent puts of Record.
type RaceStep struct {
	Writers int           `yaml:"writers"`
	Record  record.Record `yaml:"record"`
}

// Expected outcomes.
const (
	ExpectOK          = "ok"
	ExpectDuplicateID = "duplicate_id"
	ExpectNotFound    = "not_found"
)

// Step kinds, as they appear in traces.
const (
	OpPut  = "put"
	OpGet  = "get"
	OpRace = "race"
)

// maxRaceWriters bounds the goroutines a single race step may start.
const maxRaceWriters = 1024

// Op returns the step kind, or "" if none or several are set.
func (s Step) Op() string {
	var op string
	n := 0
	if s.Put != nil {
		op = OpPut
		n++
	}
	if s.Get != "" {
		op = OpGet
		n++
	}
	if s.Race != nil {
		op = OpRace
		n++
	}
	if n != 1 {
		return ""
	}
	return op
}

// ID returns the record id the step operates on.
func (s Step) ID() string {
	switch {
	case s.Put != nil:
		return s.Put.ID
	case s.Race != nil:
		return s.Race.Record.ID
	default:
		return s.Get
	}
}

func (s Step) expected() string {
	if s.Expect == "" {
		return ExpectOK
	}
	return s.Expect
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s Step) error {
	op := s.Op()
	if op == "" {
		return fmt.Errorf("steps[%d]: exactly one of put, get, race is required", index)
	}

	switch op {
	case OpPut:
		if err := s.Put.Validate(); err != nil {
			return fmt.Errorf("steps[%d]: put: %w", index, err)
		}
	case OpRace:
		if err := s.Race.Record.Validate(); err != nil {
			return fmt.Errorf("steps[%d]: race: %w", index, err)
		}
	}

	expect := s.expected()
	switch op {
	case OpPut, OpRace:
		if expect != ExpectOK && expect != ExpectDuplicateID {
			return fmt.Errorf("steps[%d]: %s: expect must be ok or duplicate_id, got %q", index, op, expect)
		}
	case OpGet:
		if expect != ExpectOK && expect != ExpectNotFound {
			return fmt.Errorf("steps[%d]: get: expect must be ok or not_found, got %q", index, expect)
		}
	}

	if s.Record != nil {
		if op != OpGet || expect != ExpectOK {
			return fmt.Errorf("steps[%d]: record is only valid on a get expecting ok", index)
		}
		if s.Record.ID != s.Get {
			return fmt.Errorf("steps[%d]: record id %q does not match get %q", index, s.Record.ID, s.Get)
		}
	}

	if s.Race != nil && (s.Race.Writers < 2 || s.Race.Writers > maxRaceWriters) {
		return fmt.Errorf("steps[%d]: race: writers must be between 2 and %d, got %d", index, maxRaceWriters, s.Race.Writers)
	}

	return nil
}
