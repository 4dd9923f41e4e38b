// Package events defines the progress events an analysis run publishes.
package events

import "time"

// AnalysisStart is published once the corpus is partitioned, before any
// operation is scored.
type AnalysisStart struct {
	Operations int
	Fragments  int
	Skipped    int
}

// AnalysisFinish is published after every operation has settled.
type AnalysisFinish struct {
	Successes int
	Failures  int
	Duration  time.Duration
}

// OperationStart is published before an operation is scored.
// The context carries the operation ID (see package opid).
type OperationStart struct {
	Name string
	Kind string
}

// OperationFinish is published after an operation is scored, successfully or not.
type OperationFinish struct {
	Name                    string
	Kind                    string
	Complexity              int
	ComplexityWithFragments int
	Err                     error
	Duration                time.Duration
}
