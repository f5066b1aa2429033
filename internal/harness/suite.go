package harness

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// FindScenarios returns path itself if it is a file, or every .yaml and .yml
// file below it in lexical order.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var paths []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// SuiteResult summarizes a RunSuite call.
type SuiteResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// Pass is true if every scenario passed.
func (r *SuiteResult) Pass() bool {
	return r.Failed == 0
}

// ScenarioFailure represents a failed scenario.
type ScenarioFailure struct {
	ScenarioPath string   `json:"scenario_path"`
	Scenario     string   `json:"scenario,omitempty"`
	Errors       []string `json:"errors"`
}

// RunSuite loads every scenario under path and runs each through
// RunEquivalence. Load and execution errors are reported as failures.
func RunSuite(ctx context.Context, path string, opts Options) (*SuiteResult, error) {
	paths, err := FindScenarios(path)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{}
	for _, scenarioPath := range paths {
		result.TotalScenarios++

		scenario, err := LoadScenario(scenarioPath)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				ScenarioPath: scenarioPath,
				Errors:       []string{fmt.Sprintf("failed to load scenario: %v", err)},
			})
			continue
		}

		report, err := RunEquivalence(ctx, scenario, opts)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				ScenarioPath: scenarioPath,
				Scenario:     scenario.Name,
				Errors:       []string{fmt.Sprintf("scenario execution failed: %v", err)},
			})
			continue
		}

		if !report.Pass() {
			result.Failed++
			result.Failures = append(result.Failures, ScenarioFailure{
				ScenarioPath: scenarioPath,
				Scenario:     scenario.Name,
				Errors:       report.Failures(),
			})
			continue
		}

		result.Passed++
	}

	return result, nil
}
