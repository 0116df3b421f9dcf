package twelvedata

import (
	"log/slog"
	"sync"
	"time"
)

// Throttle はTwelveDataの分あたりAPIクレジット上限に合わせて呼び出し
// 間隔を制御します。ウィンドウ内の呼び出しが上限に達したら、ウィンドウの
// 残り時間だけブロックします。複数goroutineから安全に呼び出せます。
type Throttle struct {
	mu          sync.Mutex
	credits     int // ウィンドウあたりの呼び出し上限
	window      time.Duration
	used        int
	windowStart time.Time
}

// NewThrottle は指定されたクレジット上限とウィンドウ幅でThrottleを生成します。
func NewThrottle(creditsPerWindow int, window time.Duration) *Throttle {
	return &Throttle{
		credits:     creditsPerWindow,
		window:      window,
		windowStart: time.Now(),
	}
}

// Wait は1クレジットを消費します。上限に達している場合は現在の
// ウィンドウが終わるまでブロックします。
func (t *Throttle) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if now.Sub(t.windowStart) >= t.window {
		t.used = 0
		t.windowStart = now
	}

	t.used++
	if t.used > t.credits {
		sleep := t.window - now.Sub(t.windowStart)
		if sleep > 0 {
			slog.Info("twelvedata credit limit reached, waiting for next window",
				"credits", t.credits, "sleep", sleep)
			time.Sleep(sleep)
		}
		t.used = 1
		t.windowStart = time.Now()
	}
}
