package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLimited_FalseWhenNeverMarked(t *testing.T) {
	m := New(time.Minute)
	assert.False(t, m.IsLimited("model-a"))
}

func TestIsLimited_TrueRightAfterMark(t *testing.T) {
	m := New(time.Minute)
	m.Mark("model-a")
	assert.True(t, m.IsLimited("model-a"))
}

func TestIsLimited_FalseAfterCooldownExpires(t *testing.T) {
	m := New(time.Millisecond)
	m.Mark("model-a")
	time.Sleep(5 * time.Millisecond)
	assert.False(t, m.IsLimited("model-a"))
}

func TestPrioritize_FreeModelsFirst(t *testing.T) {
	m := New(time.Minute)
	m.Mark("model-b")
	got := m.Prioritize([]string{"model-a", "model-b", "model-c"})
	assert.Equal(t, []string{"model-a", "model-c", "model-b"}, got)
}

func TestPrioritize_AllLimited_OldestFirst(t *testing.T) {
	m := New(time.Minute)
	m.Mark("model-a")
	time.Sleep(2 * time.Millisecond)
	m.Mark("model-b")

	got := m.Prioritize([]string{"model-a", "model-b"})
	assert.Equal(t, []string{"model-a", "model-b"}, got)
}

func TestPrioritize_NoneLimited_PreservesOrder(t *testing.T) {
	m := New(time.Minute)
	got := m.Prioritize([]string{"x", "y", "z"})
	assert.Equal(t, []string{"x", "y", "z"}, got)
}
