package extract

import (
	"io"
	"log/slog"
	"time"

	"github.com/eslam-allam/cult-beauty/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeHandle is a scriptable element. staleFor makes the next N operations
// fail with session.ErrStale, mimicking a page that re-rendered underneath
// the handle; err fails every operation with a terminal error.
type fakeHandle struct {
	text     string
	attrs    map[string]string
	bg       string
	options  []session.Option
	children map[string]*fakeHandle

	staleFor int
	err      error

	clicks   int
	selected []string
}

func (h *fakeHandle) op() error {
	if h.err != nil {
		return h.err
	}
	if h.staleFor > 0 {
		h.staleFor--
		return session.ErrStale
	}
	return nil
}

func (h *fakeHandle) ReadAttribute(name string) (string, error) {
	if err := h.op(); err != nil {
		return "", err
	}
	return h.attrs[name], nil
}

func (h *fakeHandle) ReadText() (string, error) {
	if err := h.op(); err != nil {
		return "", err
	}
	return h.text, nil
}

func (h *fakeHandle) Click() error {
	if err := h.op(); err != nil {
		return err
	}
	h.clicks++
	return nil
}

func (h *fakeHandle) Find(selector string) (session.Handle, error) {
	if err := h.op(); err != nil {
		return nil, err
	}
	if child, ok := h.children[selector]; ok {
		return child, nil
	}
	return nil, session.ErrNotFound
}

func (h *fakeHandle) SelectByVisibleText(text string) error {
	if err := h.op(); err != nil {
		return err
	}
	h.selected = append(h.selected, text)
	return nil
}

func (h *fakeHandle) Options() ([]session.Option, error) {
	if err := h.op(); err != nil {
		return nil, err
	}
	return h.options, nil
}

func (h *fakeHandle) BackgroundColor() (string, error) {
	if err := h.op(); err != nil {
		return "", err
	}
	return h.bg, nil
}

// fakeSession serves handles from static selector maps.
type fakeSession struct {
	single map[string]*fakeHandle
	lists  map[string][]*fakeHandle

	navigated []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		single: make(map[string]*fakeHandle),
		lists:  make(map[string][]*fakeHandle),
	}
}

func (s *fakeSession) Navigate(url string) error {
	s.navigated = append(s.navigated, url)
	return nil
}

func (s *fakeSession) FindOne(selector string) (session.Handle, error) {
	if h, ok := s.single[selector]; ok {
		return h, nil
	}
	return nil, session.ErrNotFound
}

func (s *fakeSession) FindAll(selector string) ([]session.Handle, error) {
	handles := s.lists[selector]
	out := make([]session.Handle, len(handles))
	for i, h := range handles {
		out[i] = h
	}
	return out, nil
}

func (s *fakeSession) WaitUntilPresent(selector string, _ time.Duration) (session.Handle, error) {
	if h, ok := s.single[selector]; ok {
		return h, nil
	}
	return nil, session.ErrTimeout
}

func (s *fakeSession) WaitUntilVisible(selector string, timeout time.Duration) (session.Handle, error) {
	return s.WaitUntilPresent(selector, timeout)
}

func (s *fakeSession) WaitUntilStale(session.Handle, time.Duration) error {
	return nil
}

func (s *fakeSession) Content() (string, error) {
	return "", nil
}
