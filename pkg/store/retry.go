package store

import (
	"errors"

	"github.com/shelterpoint/casevault/pkg/domain"
)

// RetryOnConflict runs fn up to attempts times, retrying only when fn
// returns domain.ErrConcurrencyConflict. The caller's fn must reload the
// aggregate and re-apply its command on each attempt, since a conflict means
// another writer advanced the stream.
func RetryOnConflict(attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}
