package cache

import (
	"time"
)

// TimeUntilNextIngest は次の日次インジェスト時刻（UTC午前1時）までの
// 期間を返します。価格キャッシュのTTLとして使い、新しいバーが入る
// タイミングでキャッシュが自然に切れるようにします。
func TimeUntilNextIngest() time.Duration {
	now := time.Now().UTC()

	next := time.Date(now.Year(), now.Month(), now.Day(), 1, 0, 0, 0, time.UTC)

	// 今日の午前1時が既に過ぎている場合は明日の午前1時を使用
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}

	return next.Sub(now)
}
