package extract

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/eslam-allam/cult-beauty/internal/session"
)

// RetryPolicy bounds how often a read or interaction against a live handle is
// retried after the handle has gone stale. Every reference to externally
// mutable page state is paired with a reacquisition strategy and this budget.
type RetryPolicy struct {
	MaxAttempts int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5}
}

// HandleProvider reacquires a fresh handle for a reference that went stale.
type HandleProvider func() (session.Handle, error)

// BySelector reacquires a singleton control by selector.
func BySelector(sess session.Session, selector string) HandleProvider {
	return func() (session.Handle, error) {
		return sess.FindOne(selector)
	}
}

// BySelectorIndex reacquires the i-th member of a list of controls, e.g. the
// Nth carousel image after the carousel advanced underneath us.
func BySelectorIndex(sess session.Session, selector string, index int) HandleProvider {
	return func() (session.Handle, error) {
		handles, err := sess.FindAll(selector)
		if err != nil {
			return nil, err
		}
		if index >= len(handles) {
			return nil, session.ErrNotFound
		}
		return handles[index], nil
	}
}

// ReadAttribute reads an attribute from h, reacquiring through provider on
// staleness. After the retry budget is exhausted it degrades to
// session.ErrNotFound; staleness never propagates past this boundary.
func ReadAttribute(h session.Handle, name string, provider HandleProvider, policy RetryPolicy, logger *slog.Logger) (string, error) {
	return retryRead(h, provider, policy, logger, func(h session.Handle) (string, error) {
		return h.ReadAttribute(name)
	})
}

// ReadText is ReadAttribute for the element's text content.
func ReadText(h session.Handle, provider HandleProvider, policy RetryPolicy, logger *slog.Logger) (string, error) {
	return retryRead(h, provider, policy, logger, func(h session.Handle) (string, error) {
		return h.ReadText()
	})
}

// Click clicks h, reacquiring through provider while the handle is stale.
func Click(h session.Handle, provider HandleProvider, policy RetryPolicy, logger *slog.Logger) error {
	if h == nil {
		return session.ErrNotFound
	}
	failures := 0
	for failures < policy.MaxAttempts {
		err := h.Click()
		if err == nil {
			return nil
		}
		if !errors.Is(err, session.ErrStale) {
			return err
		}
		failures++
		logger.Debug("stale handle on click, reacquiring", "failures", failures)
		if fresh, ferr := provider(); ferr == nil {
			h = fresh
		}
	}
	return fmt.Errorf("click: retry budget exhausted: %w", session.ErrNotFound)
}

func retryRead(h session.Handle, provider HandleProvider, policy RetryPolicy, logger *slog.Logger, read func(session.Handle) (string, error)) (string, error) {
	if h == nil {
		return "", session.ErrNotFound
	}
	failures := 0
	for failures < policy.MaxAttempts {
		value, err := read(h)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, session.ErrStale) {
			return "", err
		}
		failures++
		logger.Debug("stale handle on read, reacquiring", "failures", failures)
		if fresh, ferr := provider(); ferr == nil {
			h = fresh
		}
	}
	return "", session.ErrNotFound
}
