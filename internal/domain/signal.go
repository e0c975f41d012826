package domain

import "encoding/json"

// AbsenceReason explains why an optional signal is missing from a verdict.
type AbsenceReason string

// AbsenceReason constants
const (
	AbsenceDisabled          AbsenceReason = "disabled"
	AbsenceNoCredentials     AbsenceReason = "no_credentials"
	AbsenceTimeout           AbsenceReason = "timeout"
	AbsenceProviderError     AbsenceReason = "provider_error"
	AbsenceMalformedResponse AbsenceReason = "malformed_response"
)

// Signal carries an optional pipeline result: either a produced value or
// the reason none was produced. The two states are mutually exclusive; the
// zero value is Absent with an empty reason.
type Signal[T any] struct {
	value   T
	present bool
	reason  AbsenceReason
}

// Present wraps a produced value.
func Present[T any](value T) Signal[T] {
	return Signal[T]{value: value, present: true}
}

// Absent records why no value was produced.
func Absent[T any](reason AbsenceReason) Signal[T] {
	return Signal[T]{reason: reason}
}

// Value returns the wrapped value and whether it is present.
func (s Signal[T]) Value() (T, bool) {
	return s.value, s.present
}

// Present reports whether the signal carries a value.
func (s Signal[T]) Present() bool { return s.present }

// Reason returns the absence reason, empty when the signal is present.
func (s Signal[T]) Reason() AbsenceReason {
	if s.present {
		return ""
	}
	return s.reason
}

// signalJSON is the wire form: {"value": ...} or {"absent": "reason"}.
type signalJSON[T any] struct {
	Value  *T            `json:"value,omitempty"`
	Reason AbsenceReason `json:"absent,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Signal[T]) MarshalJSON() ([]byte, error) {
	if s.present {
		return json.Marshal(signalJSON[T]{Value: &s.value})
	}
	return json.Marshal(signalJSON[T]{Reason: s.reason})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Signal[T]) UnmarshalJSON(data []byte) error {
	var w signalJSON[T]
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Value != nil {
		*s = Present(*w.Value)
		return nil
	}
	*s = Absent[T](w.Reason)
	return nil
}
