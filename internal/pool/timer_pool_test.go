package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerPool_GetPut(t *testing.T) {
	timer := GetTimer(10 * time.Millisecond)
	assert.NotNil(t, timer)

	<-timer.C
	PutTimer(timer)

	// A recycled timer must fire at its new deadline, not the old one.
	timer = GetTimer(10 * time.Millisecond)
	start := time.Now()
	<-timer.C
	PutTimer(timer)

	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestTimerPool_PutActiveTimer(t *testing.T) {
	timer := GetTimer(time.Hour)
	PutTimer(timer)

	timer = GetTimer(5 * time.Millisecond)
	select {
	case <-timer.C:
	case <-time.After(time.Second):
		t.Fatal("recycled timer did not fire at the new deadline")
	}
	PutTimer(timer)
}

func TestSleep(t *testing.T) {
	start := time.Now()
	Sleep(20 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
