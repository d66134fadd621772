package scoring

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrModelUnavailable is returned when a scoring request arrives while the
// model artifact is not loaded and no fallback policy is configured.
// Scoring fails closed rather than inventing a score.
var ErrModelUnavailable = eris.New("scoring: model unavailable")

// PersistenceError reports that a validly computed result could not be
// appended to the store. The result is still returned to the caller; it may
// be absent from aggregate statistics until the append is retried.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("scoring: persist result: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
