package server

// PlayerID 表示玩家唯一标识
type PlayerID string

// Sender 向客户端发送消息的一端（网络连接或测试替身）
type Sender interface {
	Enqueue(b []byte)
	Close()
}

// Player 房间内的玩家：一个连接 + 一张自己的牌桌
type Player struct {
	ID    PlayerID
	Conn  Sender
	Table *Table

	inputsThisTick int // 本 Tick 已处理的输入数（限流）
}

// RosterEntry 广播给房间内所有人的进度摘要
type RosterEntry struct {
	ID     string `json:"id"`
	Round  int    `json:"round"`
	Target int    `json:"target"`
	Placed int    `json:"placed"`
	State  string `json:"state"`
}
