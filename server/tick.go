package server

import "time"

// StartTicker 启动房间的 Tick 循环（单线程推进所有牌桌）
func (r *Room) StartTicker() {
	r.tickerOnce.Do(func() {
		go r.run()
	})
}

func (r *Room) run() {
	defer close(r.done)
	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			r.shutdown()
			return
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick 核心循环：处理输入 → 推进回放 → 广播摘要
func (r *Room) Tick() {
	start := time.Now()
	r.BeginTick()
	r.ProcessInputs()
	r.AdvancePlayback()
	r.BroadcastRoster()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// Stop 停止 Tick 并等待协程退出；从未启动的房间在当前协程中清理
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
	r.tickerOnce.Do(func() {
		r.shutdown()
		close(r.done)
	})
	<-r.done
}

// shutdown 关闭所有玩家连接
func (r *Room) shutdown() {
pending:
	for {
		select {
		case j := <-r.joinChan:
			j.conn.Close()
		default:
			break pending
		}
	}
	for id := range r.Players {
		r.LeavePlayer(id)
	}
	Log.Infow("room stopped", "room", r.ID, "ticks", r.tickSeq)
}
