// Package harness runs recstore scenarios against a fresh service and records
// a deterministic trace of what each step observed.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: duplicate_rejected
//	description: second put with the same id fails
//	steps:
//	  - put: {id: m1, name: Up, year: 2009, was_good: true}
//	    expect: ok
//	  - put: {id: m1, name: Other, year: 1999, was_good: false}
//	    expect: duplicate_id
//	  - get: m1
//	    expect: ok
//	    record: {id: m1, name: Up, year: 2009, was_good: true}
//	  - race: {writers: 8, record: {id: r1, name: R, year: 1, was_good: false}}
//
// Each step is exactly one of put, get or race. expect is ok, duplicate_id or
// not_found and defaults to ok. A race step issues writers concurrent puts of
// one record; with expect ok exactly one must win, with duplicate_id all must
// lose.
//
// # Determinism
//
// Every event is stamped from a testutil.Sequence, so a scenario produces the
// same trace on every run. Race steps record counts rather than which writer
// won. RunEquivalence runs a scenario with the Lookup Cache enabled and
// disabled and requires identical traces; RunWithGolden compares the
// canonical trace against testdata/golden/{name}.golden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/duplicate.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := harness.RunEquivalence(ctx, scenario, harness.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range report.Failures() {
//	    log.Println(f)
//	}
package harness
