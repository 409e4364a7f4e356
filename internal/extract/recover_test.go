package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslam-allam/cult-beauty/internal/session"
)

func TestReadAttributeRecoversFromStaleness(t *testing.T) {
	h := &fakeHandle{attrs: map[string]string{"src": "image.jpg"}, staleFor: 2}
	provider := func() (session.Handle, error) { return h, nil }

	value, err := ReadAttribute(h, "src", provider, RetryPolicy{MaxAttempts: 5}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "image.jpg", value)
}

func TestReadTextExhaustsRetryBudget(t *testing.T) {
	h := &fakeHandle{text: "never seen", staleFor: 100}
	provider := func() (session.Handle, error) { return h, nil }

	_, err := ReadText(h, provider, RetryPolicy{MaxAttempts: 5}, discardLogger())
	assert.ErrorIs(t, err, session.ErrNotFound, "exhausted staleness must degrade to not-found")
	assert.Equal(t, 95, h.staleFor, "read must stop after the budget")
}

func TestReadTextPassesThroughTerminalErrors(t *testing.T) {
	boom := errors.New("boom")
	h := &fakeHandle{err: boom}
	provider := func() (session.Handle, error) { return h, nil }

	_, err := ReadText(h, provider, RetryPolicy{MaxAttempts: 5}, discardLogger())
	assert.ErrorIs(t, err, boom)
}

func TestReadTextNilHandle(t *testing.T) {
	provider := func() (session.Handle, error) { return nil, session.ErrNotFound }
	_, err := ReadText(nil, provider, RetryPolicy{MaxAttempts: 5}, discardLogger())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestClickSwitchesToReacquiredHandle(t *testing.T) {
	stale := &fakeHandle{staleFor: 100}
	fresh := &fakeHandle{}
	provider := func() (session.Handle, error) { return fresh, nil }

	err := Click(stale, provider, RetryPolicy{MaxAttempts: 5}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.clicks)
	assert.Equal(t, 0, stale.clicks)
}

func TestClickKeepsStaleHandleWhenReacquisitionFails(t *testing.T) {
	stale := &fakeHandle{staleFor: 100}
	provider := func() (session.Handle, error) { return nil, session.ErrNotFound }

	err := Click(stale, provider, RetryPolicy{MaxAttempts: 3}, discardLogger())
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, 97, stale.staleFor)
}

func TestBySelectorIndex(t *testing.T) {
	sess := newFakeSession()
	first := &fakeHandle{text: "one"}
	second := &fakeHandle{text: "two"}
	sess.lists[".item"] = []*fakeHandle{first, second}

	h, err := BySelectorIndex(sess, ".item", 1)()
	require.NoError(t, err)
	text, err := h.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "two", text)

	_, err = BySelectorIndex(sess, ".item", 5)()
	assert.ErrorIs(t, err, session.ErrNotFound)
}
