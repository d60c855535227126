package run

// State is a step of the commit workflow.
type State int

const (
	StateIdle State = iota
	StateCheckingChanges
	StateStagingDecision
	StateStaging
	StateCounting
	StateGenerating
	StateReviewingMessage
	StateCommitting
	StatePushDecision
	StateRemoteSelection
	StatePulling
	StatePushing
	StateLoopDecision
	StateDone
	StateCancelled
	StateFailed
)

var _stateNames = [...]string{
	StateIdle:             "Idle",
	StateCheckingChanges:  "CheckingChanges",
	StateStagingDecision:  "StagingDecision",
	StateStaging:          "Staging",
	StateCounting:         "Counting",
	StateGenerating:       "Generating",
	StateReviewingMessage: "ReviewingMessage",
	StateCommitting:       "Committing",
	StatePushDecision:     "PushDecision",
	StateRemoteSelection:  "RemoteSelection",
	StatePulling:          "Pulling",
	StatePushing:          "Pushing",
	StateLoopDecision:     "LoopDecision",
	StateDone:             "Done",
	StateCancelled:        "Cancelled",
	StateFailed:           "Failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(_stateNames) {
		return _stateNames[s]
	}
	return "Unknown"
}

// Terminal reports whether the workflow stops in s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}
