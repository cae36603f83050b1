package orchestrator

// turnState tracks a query's progress through the routing pipeline. Every
// state has a defined successor for every outcome; a submitted query that
// passes validation always reaches stateRecorded.
type turnState int

const (
	stateReceived turnState = iota
	stateClassified
	stateClarificationNeeded
	stateRouted
	stateAnswered
	stateRecorded
)

func (s turnState) String() string {
	switch s {
	case stateReceived:
		return "received"
	case stateClassified:
		return "classified"
	case stateClarificationNeeded:
		return "clarification_needed"
	case stateRouted:
		return "routed"
	case stateAnswered:
		return "answered"
	case stateRecorded:
		return "recorded"
	default:
		return "unknown"
	}
}
