// Package logicflow simulates a Flow of LogicNodes connected by LogicEdges:
// a breadth-first activation queue bounded by a step fuel and a trace cap,
// per spec section 4.4.
package logicflow

import (
	"fmt"
	"time"

	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

const (
	defaultMaxSteps = 10_000
	defaultMaxTrace = 1_000
)

// EvalConfig bounds a simulation run.
type EvalConfig struct {
	MaxSteps int
	MaxTrace int
}

// DefaultEvalConfig returns the spec's default fuel and trace bounds.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{MaxSteps: defaultMaxSteps, MaxTrace: defaultMaxTrace}
}

// LogicErrorKind distinguishes simulation failure modes.
type LogicErrorKind string

const (
	ErrFlowNotFound      LogicErrorKind = "FlowNotFound"
	ErrNodeNotFound      LogicErrorKind = "NodeNotFound"
	ErrMissingEntryNode  LogicErrorKind = "MissingEntryNode"
	ErrMaxStepsExceeded  LogicErrorKind = "MaxStepsExceeded"
	ErrExpressionFailure LogicErrorKind = "ExpressionError"
)

// LogicError is a category-tagged simulation error.
type LogicError struct {
	Kind     LogicErrorKind
	FlowID   string
	NodeID   string
	MaxSteps int
	Message  string
	Err      error
}

func (e *LogicError) Error() string {
	switch e.Kind {
	case ErrFlowNotFound:
		return fmt.Sprintf("flow '%s' not found", e.FlowID)
	case ErrNodeNotFound:
		return fmt.Sprintf("node '%s' not found in flow '%s'", e.NodeID, e.FlowID)
	case ErrMissingEntryNode:
		return fmt.Sprintf("no entry node available for flow '%s'", e.FlowID)
	case ErrMaxStepsExceeded:
		return fmt.Sprintf("max steps %d exceeded during simulation", e.MaxSteps)
	case ErrExpressionFailure:
		return fmt.Sprintf("expression error in node '%s': %s", e.NodeID, e.Message)
	default:
		return e.Message
	}
}

func (e *LogicError) Unwrap() error { return e.Err }

// EvalTraceEntry records one executed node for diagnostics/replay.
type EvalTraceEntry struct {
	Timestamp   time.Time
	NodeID      string
	NodeKind    graph.BuiltinLogicNodeKind
	HasNodeKind bool
	CustomKind  string
	Input       *jsonvalue.Value
	Output      *jsonvalue.Value
	Error       string
	DurationMs  uint64
}

// EvalResult is the outcome of simulating a Flow to completion or failure.
type EvalResult struct {
	// RunID uniquely identifies this simulation run, letting callers
	// correlate a result with the traces/logs emitted alongside it.
	RunID         string
	Success       bool
	ReturnValue   *jsonvalue.Value
	Traces        []EvalTraceEntry
	Diagnostics   []string
	ProviderState map[string]*jsonvalue.Value
}
