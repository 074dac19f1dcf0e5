package server

import (
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"hopscotch/config"
	"hopscotch/game"
)

type memberRequest struct {
	id   PlayerID
	conn Sender
}

// Room 房间：玩家各自的牌桌状态维护在内存，单线程 Tick 推进
type Room struct {
	ID string

	Players   map[PlayerID]*Player
	inputChan chan Input
	joinChan  chan memberRequest
	leaveChan chan memberRequest

	catalog *game.Catalog
	mode    game.ValidationMode
	rng     *rand.Rand

	// 可在运行时通过 /admin/config 调整
	maxInputsPerTick   atomic.Int32
	playbackEveryTicks atomic.Int32

	tickInterval time.Duration
	tickSeq      int64
	rosterDirty  bool
	metrics      *RoomMetrics

	tickerOnce sync.Once
	stopOnce   sync.Once
	stop       chan struct{}
	done       chan struct{}
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, catalog *game.Catalog, cfg config.RoomConfig, mode game.ValidationMode, seed int64) *Room {
	r := &Room{
		ID:        id,
		Players:   make(map[PlayerID]*Player),
		inputChan: make(chan Input, cfg.InputBuffer), // 足够缓冲，避免网络读阻塞影响 Tick
		joinChan:  make(chan memberRequest, 64),
		leaveChan: make(chan memberRequest, 64),
		catalog:   catalog,
		mode:      mode,
		rng:       rand.New(rand.NewSource(seed)),
		metrics:   &RoomMetrics{},
		// 世界推进频率，例如 20 TPS = 50ms
		tickInterval: time.Second / time.Duration(cfg.TicksPerSecond),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	r.maxInputsPerTick.Store(int32(cfg.MaxInputsPerTick))
	r.playbackEveryTicks.Store(int32(cfg.PlaybackEveryTicks))
	return r
}

// Metrics 房间运行指标
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// RequestJoin 请求在 Tick 线程中加入玩家
func (r *Room) RequestJoin(id PlayerID, conn Sender) {
	select {
	case <-r.stop:
		conn.Close()
		return
	default:
	}
	select {
	case r.joinChan <- memberRequest{id: id, conn: conn}:
	case <-r.stop:
		conn.Close()
	}
}

// RequestLeave 请求在 Tick 线程中移除玩家，避免并发改动房间状态
// conn 用于识别旧连接：已被同名新连接顶替时不移除
func (r *Room) RequestLeave(pid PlayerID, conn Sender) {
	select {
	case r.leaveChan <- memberRequest{id: pid, conn: conn}:
	case <-r.stop:
	}
}

// OnInput 入站输入（不立即改变状态），等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	// 不阻塞：输入拥塞时丢弃，保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

// JoinPlayer 将玩家加入房间；同名玩家会顶掉旧连接
func (r *Room) JoinPlayer(id PlayerID, conn Sender) *Player {
	if old, ok := r.Players[id]; ok && old.Conn != nil && old.Conn != conn {
		old.Conn.Close()
	}
	p := &Player{ID: id, Conn: conn, Table: NewTable(r.catalog, r.mode)}
	r.Players[id] = p
	r.rosterDirty = true
	Log.Infow("player joined", "room", r.ID, "player", id)
	return p
}

// LeavePlayer 将玩家移出房间，其会话随之丢弃
func (r *Room) LeavePlayer(id PlayerID) {
	if p, ok := r.Players[id]; ok {
		if p.Conn != nil {
			p.Conn.Close()
		}
		delete(r.Players, id)
		r.rosterDirty = true
		Log.Infow("player left", "room", r.ID, "player", id)
	}
}

// BeginTick 重置帧内计数
func (r *Room) BeginTick() {
	r.tickSeq++
	for _, p := range r.Players {
		p.inputsThisTick = 0
	}
}

// ProcessInputs 处理当前帧的加入、全部输入与离开（非阻塞 drain）
// 先处理加入，保证同一 Tick 内新玩家的首个输入不会被丢弃
func (r *Room) ProcessInputs() {
joins:
	for {
		select {
		case j := <-r.joinChan:
			r.JoinPlayer(j.id, j.conn)
		default:
			break joins
		}
	}
inputs:
	for {
		select {
		case in := <-r.inputChan:
			p, ok := r.Players[in.PlayerID]
			if !ok {
				continue
			}
			if p.inputsThisTick >= int(r.maxInputsPerTick.Load()) {
				r.metrics.IncRateLimited()
				continue
			}
			p.inputsThisTick++
			r.metrics.IncAccepted()
			r.applyInput(p, in)
		default:
			break inputs
		}
	}
	for {
		select {
		case l := <-r.leaveChan:
			if p, ok := r.Players[l.id]; ok && (l.conn == nil || p.Conn == l.conn) {
				r.LeavePlayer(l.id)
			}
		default:
			return
		}
	}
}

// applyInput 在玩家牌桌上执行意图并回发结果
func (r *Room) applyInput(p *Player, in Input) {
	msgs, err := p.Table.Apply(r.rng, in)
	r.record(p, in, err)
	if err != nil {
		if game.IsSoft(err) {
			Log.Debugw("soft reject", "room", r.ID, "player", p.ID, "intent", in.Kind, "err", err)
		} else {
			Log.Warnw("intent rejected", "room", r.ID, "player", p.ID, "intent", in.Kind, "err", err)
		}
		r.send(p, newErrorMessage(in.Seq, err))
		return
	}
	for _, m := range msgs {
		r.send(p, m)
	}
}

// record 按意图与结果更新指标
func (r *Room) record(p *Player, in Input, err error) {
	switch in.Kind {
	case IntentStart, IntentNext:
		if err == nil {
			r.metrics.IncRoundsStarted()
			r.rosterDirty = true
			s := p.Table.Session()
			Log.Infow("round started", "room", r.ID, "player", p.ID,
				"round", s.Round().ID, "target", s.TargetStep(), "session", s.ID())
		}
	case IntentDrop:
		if errors.Is(err, game.ErrCapacityExceeded) {
			r.metrics.IncDropsRejected()
			return
		}
		if err != nil {
			return
		}
		r.metrics.IncDropsAccepted()
		r.rosterDirty = true
		if s := p.Table.Session(); s.Mismatch() {
			r.metrics.IncMismatches()
			Log.Debugw("wrong tile", "room", r.ID, "player", p.ID,
				"index", s.MismatchAt(), "placement", game.Labels(s.Placement()))
		}
	case IntentUndo, IntentReset:
		if err == nil {
			r.rosterDirty = true
		}
	case IntentVerify:
		if err != nil {
			return
		}
		r.rosterDirty = true
		if p.Table.Session().State() == game.VerifiedCorrect {
			r.metrics.IncVerifiedCorrect()
		} else {
			r.metrics.IncVerifiedIncorrect()
		}
	}
}

// AdvancePlayback 推进所有正在自动回放的牌桌
func (r *Room) AdvancePlayback() {
	every := int(r.playbackEveryTicks.Load())
	for _, p := range r.Players {
		pose, done, ok := p.Table.advancePlayback(every)
		if ok {
			r.send(p, PoseMessage{Type: "pose", Pose: pose, Done: done})
		}
	}
}

// BroadcastRoster 进度变化时向所有玩家广播房间摘要
func (r *Room) BroadcastRoster() {
	if !r.rosterDirty {
		return
	}
	r.rosterDirty = false
	entries := make([]RosterEntry, 0, len(r.Players))
	for id, p := range r.Players {
		entries = append(entries, p.Table.roster(id))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	b, err := json.Marshal(RosterMessage{Type: "roster", Players: entries})
	if err != nil {
		Log.Errorw("marshal roster", "room", r.ID, "err", err)
		return
	}
	for _, p := range r.Players {
		if p.Conn != nil {
			p.Conn.Enqueue(b)
		}
	}
}

func (r *Room) send(p *Player, msg any) {
	if p.Conn == nil {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		Log.Errorw("marshal message", "room", r.ID, "player", p.ID, "err", err)
		return
	}
	p.Conn.Enqueue(b)
}
