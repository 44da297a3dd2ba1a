package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeFiresTimersInDeadlineOrder(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	var fired []string
	f.AfterFunc(2*time.Second, func() { fired = append(fired, "late") })
	f.AfterFunc(time.Second, func() { fired = append(fired, "early") })

	f.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"early"}, fired)
	assert.Equal(t, 1, f.Pending())

	f.Advance(time.Second)
	assert.Equal(t, []string{"early", "late"}, fired)
	assert.Equal(t, start.Add(2500*time.Millisecond), f.Now())
}

func TestFakeStoppedTimerNeverFires(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	called := false
	timer := f.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	f.Advance(time.Minute)
	assert.False(t, called)
}

func TestFakeTimerScheduledFromCallbackFiresWithinSameAdvance(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	count := 0
	f.AfterFunc(time.Second, func() {
		count++
		f.AfterFunc(time.Second, func() { count++ })
	})

	f.Advance(3 * time.Second)
	assert.Equal(t, 2, count)
}
