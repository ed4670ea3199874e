package eligibility

import (
	"encoding/json"
	"slices"
)

// Kind labels a Decision variant.
type Kind string

const (
	KindAccepted Kind = "accepted"
	KindRejected Kind = "rejected"
	KindPending  Kind = "pending"
	KindFailed   Kind = "failed"
)

// Decision is the result of one classification attempt. It is one of
// Accepted, Rejected, Pending, or Failed.
type Decision interface {
	Kind() Kind
	decision()
}

type Accepted struct {
	Reason                  string
	SuggestedCertifications []string
}

type Rejected struct {
	Reason string
}

// Pending asks the caller for answers before a final decision can be made.
type Pending struct {
	Questions []string
}

// Failed terminates the attempt. Cause wraps one of the failure sentinels.
type Failed struct {
	Cause error
}

func (Accepted) Kind() Kind { return KindAccepted }
func (Rejected) Kind() Kind { return KindRejected }
func (Pending) Kind() Kind  { return KindPending }
func (Failed) Kind() Kind   { return KindFailed }

func (Accepted) decision() {}
func (Rejected) decision() {}
func (Pending) decision()  {}
func (Failed) decision()   {}

type acceptedWire struct {
	Decision                Kind     `json:"decision"`
	Reason                  string   `json:"reason"`
	SuggestedCertifications []string `json:"suggested_certifications"`
}

type rejectedWire struct {
	Decision Kind   `json:"decision"`
	Reason   string `json:"reason"`
}

type pendingWire struct {
	Decision  Kind     `json:"decision"`
	Questions []string `json:"questions"`
}

type failedWire struct {
	Error string `json:"error"`
}

func (d Accepted) MarshalJSON() ([]byte, error) {
	certs := d.SuggestedCertifications
	if certs == nil {
		certs = []string{}
	}
	return json.Marshal(acceptedWire{KindAccepted, d.Reason, certs})
}

func (d Rejected) MarshalJSON() ([]byte, error) {
	return json.Marshal(rejectedWire{KindRejected, d.Reason})
}

func (d Pending) MarshalJSON() ([]byte, error) {
	return json.Marshal(pendingWire{KindPending, d.Questions})
}

// MarshalJSON writes the error envelope. Only the sanitized cause is exposed.
func (d Failed) MarshalJSON() ([]byte, error) {
	return json.Marshal(failedWire{Cause(d.Cause).Error()})
}

// Equal reports whether a and b are the same variant with the same content.
// Failed decisions compare by cause.
func Equal(a, b Decision) bool {
	switch x := a.(type) {
	case Accepted:
		y, ok := b.(Accepted)
		return ok && x.Reason == y.Reason && slices.Equal(x.SuggestedCertifications, y.SuggestedCertifications)
	case Rejected:
		y, ok := b.(Rejected)
		return ok && x.Reason == y.Reason
	case Pending:
		y, ok := b.(Pending)
		return ok && slices.Equal(x.Questions, y.Questions)
	case Failed:
		y, ok := b.(Failed)
		return ok && Cause(x.Cause) == Cause(y.Cause)
	}
	return false
}
