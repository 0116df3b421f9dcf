package twelvedata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottle_UnderLimitDoesNotBlock(t *testing.T) {
	t.Parallel()

	th := NewThrottle(3, time.Minute)

	start := time.Now()
	th.Wait()
	th.Wait()
	th.Wait()

	assert.Less(t, time.Since(start), time.Second, "calls within the credit budget must not block")
}

func TestThrottle_BlocksUntilWindowEnds(t *testing.T) {
	t.Parallel()

	const window = 80 * time.Millisecond
	th := NewThrottle(1, window)

	th.Wait()
	start := time.Now()
	th.Wait() // 2回目は上限超過、ウィンドウ終了まで待つ

	assert.GreaterOrEqual(t, time.Since(start), window/2, "over-budget call must wait out the window")
}

func TestThrottle_WindowResetRestoresCredits(t *testing.T) {
	t.Parallel()

	const window = 50 * time.Millisecond
	th := NewThrottle(2, window)

	th.Wait()
	th.Wait()
	time.Sleep(window + 10*time.Millisecond)

	start := time.Now()
	th.Wait() // 新しいウィンドウなので即座に通る
	assert.Less(t, time.Since(start), window/2)
}
