package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/eslam-allam/cult-beauty/internal/session"
)

// NewSession wraps a playwright page as a session.Session. Playwright handles
// keep working on nodes a re-render has detached from the document, so every
// read checks connectedness first and reports session.ErrStale for detached
// nodes, matching the staleness semantics the extraction pipeline recovers
// from.
func NewSession(page playwright.Page, navigationTimeout time.Duration) session.Session {
	if navigationTimeout == 0 {
		navigationTimeout = 30 * time.Second
	}
	return &pageSession{page: page, navigationTimeout: navigationTimeout}
}

type pageSession struct {
	page              playwright.Page
	navigationTimeout time.Duration
}

func (s *pageSession) Navigate(url string) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.navigationTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (s *pageSession) FindOne(selector string) (session.Handle, error) {
	eh, err := s.page.QuerySelector(selector)
	if err != nil {
		return nil, mapError(err)
	}
	if eh == nil {
		return nil, session.ErrNotFound
	}
	return &elementHandle{eh: eh}, nil
}

func (s *pageSession) FindAll(selector string) ([]session.Handle, error) {
	all, err := s.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, mapError(err)
	}
	handles := make([]session.Handle, 0, len(all))
	for _, eh := range all {
		handles = append(handles, &elementHandle{eh: eh})
	}
	return handles, nil
}

func (s *pageSession) WaitUntilPresent(selector string, timeout time.Duration) (session.Handle, error) {
	return s.waitFor(selector, timeout, playwright.WaitForSelectorStateAttached)
}

func (s *pageSession) WaitUntilVisible(selector string, timeout time.Duration) (session.Handle, error) {
	return s.waitFor(selector, timeout, playwright.WaitForSelectorStateVisible)
}

func (s *pageSession) waitFor(selector string, timeout time.Duration, state *playwright.WaitForSelectorState) (session.Handle, error) {
	eh, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   state,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if isTimeout(err) {
			return nil, session.ErrTimeout
		}
		return nil, mapError(err)
	}
	if eh == nil {
		return nil, session.ErrNotFound
	}
	return &elementHandle{eh: eh}, nil
}

// WaitUntilStale polls the handle until its node has been detached from the
// document. A destroyed execution context counts as stale too: the page
// navigated or re-rendered wholesale.
func (s *pageSession) WaitUntilStale(h session.Handle, timeout time.Duration) error {
	eh, ok := h.(*elementHandle)
	if !ok {
		return fmt.Errorf("browser: foreign handle type %T", h)
	}
	deadline := time.Now().Add(timeout)
	for {
		connected, err := eh.eh.Evaluate("el => el.isConnected")
		if err != nil {
			return nil
		}
		if c, ok := connected.(bool); ok && !c {
			return nil
		}
		if time.Now().After(deadline) {
			return session.ErrTimeout
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func (s *pageSession) Content() (string, error) {
	return s.page.Content()
}

type elementHandle struct {
	eh playwright.ElementHandle
}

func (h *elementHandle) ReadAttribute(name string) (string, error) {
	if err := h.ensureAttached(); err != nil {
		return "", err
	}
	value, err := h.eh.GetAttribute(name)
	if err != nil {
		return "", mapError(err)
	}
	return value, nil
}

func (h *elementHandle) ReadText() (string, error) {
	if err := h.ensureAttached(); err != nil {
		return "", err
	}
	text, err := h.eh.TextContent()
	if err != nil {
		return "", mapError(err)
	}
	return text, nil
}

func (h *elementHandle) Click() error {
	if err := h.ensureAttached(); err != nil {
		return err
	}
	// Click through the DOM instead of the pointer model; overlays on this
	// storefront frequently cover controls that are still interactable.
	if _, err := h.eh.Evaluate("el => el.click()"); err != nil {
		return mapError(err)
	}
	return nil
}

func (h *elementHandle) Find(selector string) (session.Handle, error) {
	if err := h.ensureAttached(); err != nil {
		return nil, err
	}
	eh, err := h.eh.QuerySelector(selector)
	if err != nil {
		return nil, mapError(err)
	}
	if eh == nil {
		return nil, session.ErrNotFound
	}
	return &elementHandle{eh: eh}, nil
}

func (h *elementHandle) SelectByVisibleText(text string) error {
	if err := h.ensureAttached(); err != nil {
		return err
	}
	labels := []string{text}
	if _, err := h.eh.SelectOption(playwright.SelectOptionValues{Labels: &labels}); err != nil {
		return mapError(err)
	}
	return nil
}

func (h *elementHandle) Options() ([]session.Option, error) {
	if err := h.ensureAttached(); err != nil {
		return nil, err
	}
	elements, err := h.eh.QuerySelectorAll("option")
	if err != nil {
		return nil, mapError(err)
	}
	options := make([]session.Option, 0, len(elements))
	for _, el := range elements {
		text, err := el.TextContent()
		if err != nil {
			return nil, mapError(err)
		}
		value, err := el.GetAttribute("value")
		if err != nil {
			return nil, mapError(err)
		}
		options = append(options, session.Option{Text: strings.TrimSpace(text), Value: value})
	}
	return options, nil
}

func (h *elementHandle) BackgroundColor() (string, error) {
	if err := h.ensureAttached(); err != nil {
		return "", err
	}
	result, err := h.eh.Evaluate("el => window.getComputedStyle(el).backgroundColor")
	if err != nil {
		return "", mapError(err)
	}
	color, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("browser: unexpected computed style result %T", result)
	}
	return color, nil
}

func (h *elementHandle) ensureAttached() error {
	connected, err := h.eh.Evaluate("el => el.isConnected")
	if err != nil {
		return mapError(err)
	}
	if c, ok := connected.(bool); ok && !c {
		return session.ErrStale
	}
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not attached"),
		strings.Contains(msg, "stale"),
		strings.Contains(msg, "execution context was destroyed"),
		strings.Contains(msg, "cannot find context"):
		return fmt.Errorf("%w: %v", session.ErrStale, err)
	case isTimeout(err):
		return fmt.Errorf("%w: %v", session.ErrTimeout, err)
	default:
		return err
	}
}

// isTimeout matches playwright's typed TimeoutError only. Matching on the
// message would mislabel unrelated failures that merely mention a timeout.
func isTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}
