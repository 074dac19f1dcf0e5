package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	InputsAccepted    int64 // 被接受的输入数
	RateLimited       int64 // 因同帧限流被拒绝的输入数
	ChanFullDiscarded int64 // 因通道满被丢弃的输入数
	RoundsStarted     int64 // 扔石子开局次数
	DropsAccepted     int64 // 放置成功的牌块
	DropsRejected     int64 // 因已摆满被拒绝的放置
	Mismatches        int64 // 放错位置的次数
	VerifiedCorrect   int64
	VerifiedIncorrect int64
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted()          { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncRateLimited()       { atomic.AddInt64(&m.RateLimited, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncRoundsStarted()     { atomic.AddInt64(&m.RoundsStarted, 1) }
func (m *RoomMetrics) IncDropsAccepted()     { atomic.AddInt64(&m.DropsAccepted, 1) }
func (m *RoomMetrics) IncDropsRejected()     { atomic.AddInt64(&m.DropsRejected, 1) }
func (m *RoomMetrics) IncMismatches()        { atomic.AddInt64(&m.Mismatches, 1) }
func (m *RoomMetrics) IncVerifiedCorrect()   { atomic.AddInt64(&m.VerifiedCorrect, 1) }
func (m *RoomMetrics) IncVerifiedIncorrect() { atomic.AddInt64(&m.VerifiedIncorrect, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"rate_limited":        atomic.LoadInt64(&m.RateLimited),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"rounds_started":      atomic.LoadInt64(&m.RoundsStarted),
		"drops_accepted":      atomic.LoadInt64(&m.DropsAccepted),
		"drops_rejected":      atomic.LoadInt64(&m.DropsRejected),
		"mismatches":          atomic.LoadInt64(&m.Mismatches),
		"verified_correct":    atomic.LoadInt64(&m.VerifiedCorrect),
		"verified_incorrect":  atomic.LoadInt64(&m.VerifiedIncorrect),
		"avg_tick_ms":         avgMs,
	}
}
