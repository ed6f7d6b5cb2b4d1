package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAfterFires(t *testing.T) {
	s := New()
	defer s.Close()

	var fired atomic.Bool
	s.After("notes", 10*time.Millisecond, func() { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Pending("notes"))
}

func TestHandleStop(t *testing.T) {
	s := New()
	defer s.Close()

	var fired atomic.Bool
	h := s.After("notes", 50*time.Millisecond, func() { fired.Store(true) })

	assert.True(t, h.Stop())
	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())

	// Stopping twice reports false
	assert.False(t, h.Stop())
}

func TestCancelOwner(t *testing.T) {
	s := New()
	defer s.Close()

	var count atomic.Int32
	s.After("email", 50*time.Millisecond, func() { count.Add(1) })
	s.After("email", 60*time.Millisecond, func() { count.Add(1) })
	s.After("browser", 10*time.Millisecond, func() { count.Add(1) })

	assert.Equal(t, 2, s.Cancel("email"))

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
	assert.Equal(t, 0, s.Pending("email"))
}

func TestCancelUnknownOwner(t *testing.T) {
	s := New()
	defer s.Close()

	assert.Equal(t, 0, s.Cancel("ghost"))
}

func TestCloseRejectsNew(t *testing.T) {
	s := New()

	var fired atomic.Bool
	s.After("a", 20*time.Millisecond, func() { fired.Store(true) })
	s.Close()

	h := s.After("b", time.Millisecond, func() { fired.Store(true) })
	assert.False(t, h.Stop())

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())
}
