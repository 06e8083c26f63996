package logger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savewise/pkg/errors"
)

type captureTracker struct {
	mu   sync.Mutex
	errs []error
	tags []map[string]string
}

func (c *captureTracker) CaptureError(_ context.Context, err error, tags map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
	c.tags = append(c.tags, tags)
	return nil
}

func (c *captureTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}
func (c *captureTracker) SetUser(context.Context, string, string, string) {}
func (c *captureTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}
func (c *captureTracker) Flush(context.Context) error { return nil }

func TestComponentTagsTrackedErrors(t *testing.T) {
	require.NoError(t, Init("error", "production"))
	tracker := &captureTracker{}
	SetErrorTracker(tracker)
	defer SetErrorTracker(nil)

	log := Get().Component("persistence")
	log.Errorw("fallback write failed", errors.ErrQueueFull, "backend", "file")
	log.With("k", "v").Errorf("remote %s", "down")

	require.Len(t, tracker.errs, 2)
	assert.True(t, errors.Is(tracker.errs[0], errors.ErrQueueFull))
	assert.Equal(t, "persistence", tracker.tags[0]["component"])
	assert.Equal(t, "persistence", tracker.tags[1]["component"])
}

func TestNopLoggerDoesNotTrack(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.Component("x").Error("ignored")
		log.Errorw("ignored", nil)
	})
}
