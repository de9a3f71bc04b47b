package pipeline

import "fmt"

// Kind classifies where in the import pipeline a failure occurred. Each kind
// maps to a fixed user-facing message; the wrapped cause stays diagnostic.
type Kind int

const (
	KindPermissionDenied Kind = iota
	KindFetchFailure
	KindExtractionFailure
	KindIngredientResolution
	KindPersistenceFailure
)

var userMessages = map[Kind]string{
	KindPermissionDenied:     "Sidan tillåter inte import av recept.",
	KindFetchFailure:         "Det gick inte att läsa in sidan.",
	KindExtractionFailure:    "Det gick inte att läsa receptet från länken.",
	KindIngredientResolution: "Något gick fel. Försök igen.",
	KindPersistenceFailure:   "Det gick inte att spara receptet.",
}

// Error is a classified pipeline failure.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.UserMessage()
	}
	return e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// UserMessage returns the fixed message shown to the end user for this
// failure kind. It never leaks diagnostic detail.
func (e *Error) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return userMessages[KindIngredientResolution]
}

func failed(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}
