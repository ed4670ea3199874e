package eligibility

// Phase is a state in the decision lifecycle of one submission.
type Phase string

const (
	PhaseClassifying          Phase = "classifying"
	PhasePendingClarification Phase = "pending_clarification"
	PhaseAccepted             Phase = "accepted"
	PhaseRejected             Phase = "rejected"
	PhaseFailed               Phase = "failed"
)

var transitions = map[Phase][]Phase{
	PhaseClassifying:          {PhaseAccepted, PhaseRejected, PhasePendingClarification, PhaseFailed},
	PhasePendingClarification: {PhaseAccepted, PhaseRejected, PhaseFailed},
}

// CanTransition reports whether the lifecycle permits moving from one phase
// to another. Accepted, Rejected, and Failed are terminal.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from p.
func (p Phase) Terminal() bool {
	return len(transitions[p]) == 0
}

// PhaseOf returns the phase a decision moves the submission into.
func PhaseOf(d Decision) Phase {
	switch d.Kind() {
	case KindAccepted:
		return PhaseAccepted
	case KindRejected:
		return PhaseRejected
	case KindPending:
		return PhasePendingClarification
	}
	return PhaseFailed
}

// origin is the phase a request at stage starts from.
func origin(stage Stage) Phase {
	if stage == StageFollowUp {
		return PhasePendingClarification
	}
	return PhaseClassifying
}
