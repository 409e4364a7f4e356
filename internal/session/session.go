// Package session defines the narrow interface through which the extraction
// pipeline drives a single remote UI session. Implementations own exactly one
// logical "current page" at a time; handles returned by lookups are live
// references into that page and become stale when the page mutates in place.
package session

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a selector matches nothing.
	ErrNotFound = errors.New("session: element not found")
	// ErrStale is returned when a handle refers to a node that has been
	// invalidated by a page mutation since it was acquired.
	ErrStale = errors.New("session: stale element reference")
	// ErrTimeout is returned when an explicit wait expires.
	ErrTimeout = errors.New("session: wait timed out")
)

// Option is a single entry of a dropdown control.
type Option struct {
	Text  string
	Value string
}

// Handle is an opaque reference to an element on the current page. Any read
// or interaction may fail with ErrStale once the page has re-rendered.
type Handle interface {
	ReadAttribute(name string) (string, error)
	ReadText() (string, error)
	Click() error
	// Find looks up a descendant of this element.
	Find(selector string) (Handle, error)
	// SelectByVisibleText selects a dropdown option by its visible label.
	SelectByVisibleText(text string) error
	// Options enumerates the entries of a dropdown control.
	Options() ([]Option, error)
	// BackgroundColor reports the rendered background color as a raw CSS
	// color string (e.g. "rgb(186, 26, 26)").
	BackgroundColor() (string, error)
}

// Session exposes element lookup, interaction and explicit-wait primitives
// against one page session.
type Session interface {
	Navigate(url string) error
	FindOne(selector string) (Handle, error)
	FindAll(selector string) ([]Handle, error)
	WaitUntilPresent(selector string, timeout time.Duration) (Handle, error)
	WaitUntilVisible(selector string, timeout time.Duration) (Handle, error)
	// WaitUntilStale blocks until the handle has been detached from the
	// page, the usual readiness signal after a variant selection.
	WaitUntilStale(h Handle, timeout time.Duration) error
	// Content returns the rendered HTML of the current page.
	Content() (string, error)
}
