// Package apierr defines the error taxonomy surfaced to subscribers and
// REST callers. Kinds are exhaustive: every error the core raises carries
// one of these.
package apierr

// Kind is the wire-level error classification.
type Kind string

const (
	BadRequest               Kind = "bad_request"
	UnknownIndicator         Kind = "unknown_indicator"
	InvalidIndicatorParam    Kind = "invalid_indicator_param"
	Capacity                 Kind = "capacity"
	SlowConsumer             Kind = "slow_consumer"
	HistoricalUnavailable    Kind = "historical_unavailable"
	HistoricalInvalidRequest Kind = "historical_invalid_request"
	Internal                 Kind = "internal"
)

// Error is the typed error returned across the core's operations.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// InvalidSymbol, InvalidExchange, InvalidTimeframe, InvalidDateRange are all
// specializations of BadRequest; they carry distinct
// messages but the same wire kind, except where callers need the narrower
// classification (validators return these names so tests can assert on
// cause, but a handler that doesn't care can type-switch on Kind alone).
func InvalidSymbol(msg string) *Error        { return New(BadRequest, "invalid symbol: "+msg) }
func InvalidExchange(msg string) *Error      { return New(BadRequest, "invalid exchange: "+msg) }
func InvalidTimeframe(msg string) *Error     { return New(BadRequest, "invalid timeframe: "+msg) }
func InvalidDateRange(msg string) *Error     { return New(BadRequest, "invalid date range: "+msg) }
func InvalidTick(msg string) *Error          { return New(BadRequest, "invalid tick: "+msg) }
func UnknownIndicatorErr(name string) *Error { return New(UnknownIndicator, "unknown indicator: "+name) }
func InvalidParam(msg string) *Error         { return New(InvalidIndicatorParam, msg) }
