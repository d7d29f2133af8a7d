package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cosmicai/RagAPI/internal/domain/docModel"
)

// Policy is a pure bounded-backoff decision: given how many attempts have
// been made and what failed, it answers retry-after or give-up. It owns no
// timers, so callers sleep and it stays trivially testable.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type Decision struct {
	Retry bool
	After time.Duration
}

var giveUp = Decision{}

// Decide evaluates attempt number `attempt` (1-based, already made) failing
// with err. Delay doubles per attempt. Only transient connectivity failures
// are retried; validation and dimension errors never are.
func (p Policy) Decide(attempt int, err error) Decision {
	if err == nil || attempt < 1 || attempt >= p.MaxAttempts {
		return giveUp
	}
	if !Transient(err) {
		return giveUp
	}
	return Decision{
		Retry: true,
		After: p.BaseDelay << (attempt - 1),
	}
}

// Transient reports whether err looks like a connectivity/provider blip
// rather than a caller or configuration mistake.
func Transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var dimErr *docModel.DimensionError
	var valErr *docModel.ValidationError
	var conErr *docModel.ConsistencyError
	var parseErr *docModel.ParseError
	if errors.As(err, &dimErr) || errors.As(err, &valErr) || errors.As(err, &conErr) || errors.As(err, &parseErr) {
		return false
	}

	var embErr *docModel.EmbeddingError
	if errors.As(err, &embErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
