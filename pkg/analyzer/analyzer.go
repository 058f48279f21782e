// Package analyzer implements the hybrid analyzer service: it routes
// between the native source parser and an external analyzer based on a
// confidence threshold, reconciling whichever graphs result via the merge
// engine, per spec section 6.
package analyzer

import (
	"github.com/forgekit/forge-engine/pkg/graph"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
	"github.com/forgekit/forge-engine/pkg/merge"
)

// AnalysisReportVersion is the version stamped on every AnalysisReport
// envelope, matching the original implementation's ANALYSIS_REPORT_VERSION.
const AnalysisReportVersion = "1.0.0"

// AnalysisStrategy is the processing path chosen for a given source file.
type AnalysisStrategy int

const (
	StrategyNative AnalysisStrategy = iota
	StrategyAnalyzerFallback
)

// String renders the strategy the way the original Rust enum serializes by
// default: the bare variant name, unchanged case.
func (s AnalysisStrategy) String() string {
	switch s {
	case StrategyNative:
		return "Native"
	case StrategyAnalyzerFallback:
		return "AnalyzerFallback"
	default:
		return "Unknown"
	}
}

// DefaultConfidenceThreshold is used when the service is constructed with
// NewDefault.
const DefaultConfidenceThreshold = 0.7

// AnalyzerService routes between the native parser and a mocked external
// analyzer based on confidence thresholds.
type AnalyzerService struct {
	confidenceThreshold float32
}

// New constructs a service with the given threshold, clamped to [0, 1].
func New(confidenceThreshold float32) AnalyzerService {
	return AnalyzerService{confidenceThreshold: clamp(confidenceThreshold, 0, 1)}
}

// NewDefault constructs a service using DefaultConfidenceThreshold.
func NewDefault() AnalyzerService {
	return New(DefaultConfidenceThreshold)
}

func clamp(v, low, high float32) float32 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// ConfidenceThreshold reports the threshold this service was built with.
func (s AnalyzerService) ConfidenceThreshold() float32 {
	return s.confidenceThreshold
}

// AnalysisDecision records which strategy evaluate chose and why.
type AnalysisDecision struct {
	Strategy         AnalysisStrategy
	NativeConfidence float32
	Threshold        float32
}

// ToValue lowers an AnalysisDecision into {"strategy","native_confidence","threshold"}.
func (d AnalysisDecision) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("strategy", jsonvalue.NewString(d.Strategy.String()))
	out.ObjectSet("native_confidence", jsonvalue.NewNumber(float64(d.NativeConfidence)))
	out.ObjectSet("threshold", jsonvalue.NewNumber(float64(d.Threshold)))
	return out
}

// Evaluate selects a processing strategy for the given native-parser
// confidence score.
func (s AnalyzerService) Evaluate(nativeConfidence float32) AnalysisDecision {
	strategy := StrategyAnalyzerFallback
	if nativeConfidence >= s.confidenceThreshold {
		strategy = StrategyNative
	}
	return AnalysisDecision{
		Strategy:         strategy,
		NativeConfidence: nativeConfidence,
		Threshold:        s.confidenceThreshold,
	}
}

// AnalyzerInvocation describes a (currently mocked) call out to an external
// analyzer.
type AnalyzerInvocation struct {
	Executed bool
	Graph    *graph.ScreenGraph // nil means the analyzer produced no graph
}

// AnalysisOutcome is the full result of running the hybrid analysis: the
// decision that was made, whether the analyzer was invoked, and the merge
// outcome reconciling whichever graphs were produced.
type AnalysisOutcome struct {
	Decision        AnalysisDecision
	AnalyzerInvoked bool
	Diagnostics     []string
	QuickGraph      graph.ScreenGraph
	AnalyzerGraph   *graph.ScreenGraph // nil means the analyzer path wasn't taken
	Merge           merge.MergeOutcome
}

// ToValue lowers an AnalysisOutcome into
// {"decision","analyzer_invoked","diagnostics"?,"quick_graph","analyzer_graph"?,"merge"},
// omitting diagnostics when empty and analyzer_graph when nil, matching the
// original's skip_serializing_if attributes.
func (o AnalysisOutcome) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("decision", o.Decision.ToValue())
	out.ObjectSet("analyzer_invoked", jsonvalue.NewBoolean(o.AnalyzerInvoked))

	if len(o.Diagnostics) > 0 {
		diagnostics := jsonvalue.NewArray()
		for _, d := range o.Diagnostics {
			diagnostics.ArrayAppend(jsonvalue.NewString(d))
		}
		out.ObjectSet("diagnostics", diagnostics)
	}

	out.ObjectSet("quick_graph", o.QuickGraph.ToValue())
	if o.AnalyzerGraph != nil {
		out.ObjectSet("analyzer_graph", o.AnalyzerGraph.ToValue())
	}
	out.ObjectSet("merge", o.Merge.ToValue())
	return out
}

// AnalysisReport is the external report envelope described by spec section
// 6: a version-stamped batch of AnalysisOutcomes plus their total conflict
// count, grounded on tests/analysis_report_schema.rs's envelope shape.
type AnalysisReport struct {
	Version        string
	Outcomes       []AnalysisOutcome
	TotalConflicts int
}

// NewReport assembles an AnalysisReport from one or more outcomes, summing
// each outcome's merge conflicts into TotalConflicts.
func NewReport(outcomes ...AnalysisOutcome) AnalysisReport {
	total := 0
	for _, o := range outcomes {
		total += len(o.Merge.Conflicts)
	}
	return AnalysisReport{
		Version:        AnalysisReportVersion,
		Outcomes:       outcomes,
		TotalConflicts: total,
	}
}

// ToValue lowers an AnalysisReport into {"version","outcomes","total_conflicts"}.
func (r AnalysisReport) ToValue() *jsonvalue.Value {
	out := jsonvalue.NewObject()
	out.ObjectSet("version", jsonvalue.NewString(r.Version))

	outcomes := jsonvalue.NewArray()
	for _, o := range r.Outcomes {
		outcomes.ArrayAppend(o.ToValue())
	}
	out.ObjectSet("outcomes", outcomes)
	out.ObjectSet("total_conflicts", jsonvalue.NewInt64(int64(r.TotalConflicts)))
	return out
}

// Run executes the hybrid analyzer flow: it evaluates nativeConfidence, and
// depending on the chosen strategy either merges the quick-parse graph
// against itself (native path, a no-op reconciliation) or invokes the mocked
// analyzer and merges base/quick/analyzer via the three-way merge engine.
func (s AnalyzerService) Run(source string, baseGraph graph.ScreenGraph, quickGraph graph.ScreenGraph, nativeConfidence float32) AnalysisOutcome {
	decision := s.Evaluate(nativeConfidence)

	var analyzerGraphOut *graph.ScreenGraph
	var analyzerInvoked bool
	var mergeOutcome merge.MergeOutcome

	switch decision.Strategy {
	case StrategyNative:
		mergeOutcome = merge.MergeScreenGraphs(baseGraph, quickGraph, quickGraph)
	default:
		invocation := s.invokeAnalyzer(source, quickGraph)
		analyzerInvoked = invocation.Executed
		analyzerGraph := quickGraph
		if invocation.Graph != nil {
			analyzerGraph = *invocation.Graph
		}
		mergeOutcome = merge.MergeScreenGraphs(baseGraph, quickGraph, analyzerGraph)
		analyzerGraphOut = &analyzerGraph
	}

	return AnalysisOutcome{
		Decision:        decision,
		AnalyzerInvoked: analyzerInvoked,
		QuickGraph:      quickGraph,
		AnalyzerGraph:   analyzerGraphOut,
		Merge:           mergeOutcome,
	}
}

// invokeAnalyzer is a stub standing in for a real external analyzer
// integration: it returns a copy of the quick graph with its id tagged, so
// the merge engine has something distinct to reconcile against.
func (s AnalyzerService) invokeAnalyzer(_ string, quickGraph graph.ScreenGraph) AnalyzerInvocation {
	analyzerGraph := quickGraph
	analyzerGraph.ID = quickGraph.ID + "__analyzer"
	return AnalyzerInvocation{Executed: true, Graph: &analyzerGraph}
}
