package router

import "fmt"

const (
	SentinelCircuitOpen  = "ERROR: FINANCIAL CIRCUIT BREAKER. Daily spend limit reached."
	SentinelSilent       = "Task completed silently."
	SentinelLoopExceeded = "ERROR: Maximum tool loop count exceeded before a final answer."
)

// Outcome classifies how a request ended.
type Outcome int

const (
	OutcomeFinal Outcome = iota
	OutcomeSilent
	OutcomeLoopExceeded
	OutcomeCircuitOpen
	OutcomeBackendFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinal:
		return "final"
	case OutcomeSilent:
		return "silent"
	case OutcomeLoopExceeded:
		return "loop_exceeded"
	case OutcomeCircuitOpen:
		return "circuit_open"
	case OutcomeBackendFailure:
		return "backend_failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the answer text plus how it was reached. Answer is never empty.
type Result struct {
	Answer  string
	Outcome Outcome
}

// Final reports whether Answer is real model output.
func (r Result) Final() bool { return r.Outcome == OutcomeFinal }

func finalResult(content string) Result {
	if content == "" {
		return Result{Answer: SentinelSilent, Outcome: OutcomeSilent}
	}
	return Result{Answer: content, Outcome: OutcomeFinal}
}

func circuitOpen() Result {
	return Result{Answer: SentinelCircuitOpen, Outcome: OutcomeCircuitOpen}
}

func loopExceeded() Result {
	return Result{Answer: SentinelLoopExceeded, Outcome: OutcomeLoopExceeded}
}

func backendFailure(err error) Result {
	return Result{
		Answer:  fmt.Sprintf("ERROR: Model generation failed. Details: %v", err),
		Outcome: OutcomeBackendFailure,
	}
}
