package server

import (
	"fmt"
	"math/rand"

	"hopscotch/game"
)

// Phase 牌桌生命周期：扔石子并建好会话之前不接受摆放
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInitializing
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	default:
		return "idle"
	}
}

// Table 一个玩家的牌桌：持有当前关卡的会话与回放状态
// 只在房间 Tick 协程中访问
type Table struct {
	catalog *game.Catalog
	mode    game.ValidationMode

	phase   Phase
	session *game.Session

	// generation 每次换关递增；回放只对武装时的 generation 生效
	generation uint64
	playGen    uint64
	playing    bool
	sinceStep  int
}

// NewTable 创建空牌桌
func NewTable(catalog *game.Catalog, mode game.ValidationMode) *Table {
	return &Table{catalog: catalog, mode: mode}
}

func (t *Table) Phase() Phase           { return t.phase }
func (t *Table) Session() *game.Session { return t.session }
func (t *Table) Playing() bool          { return t.playing && t.playGen == t.generation }

// Start 换关：先扔石子并建好新会话，成功后才丢弃旧会话与待执行回放
// 失败时牌桌保持原状
func (t *Table) Start(rng *rand.Rand, roundID int) (game.Toss, error) {
	prev := t.phase
	t.phase = PhaseInitializing
	toss, s, err := t.prepare(rng, roundID)
	if err != nil {
		t.phase = prev
		return game.Toss{}, err
	}
	t.generation++
	t.stopPlayback()
	t.session = s
	t.phase = PhaseReady
	return toss, nil
}

func (t *Table) prepare(rng *rand.Rand, roundID int) (game.Toss, *game.Session, error) {
	round, err := t.catalog.Round(roundID)
	if err != nil {
		return game.Toss{}, nil, err
	}
	toss, err := game.TossStone(rng, round.Len())
	if err != nil {
		return game.Toss{}, nil, err
	}
	s, err := game.NewSession(t.catalog, roundID, toss.Target, game.WithValidationMode(t.mode))
	if err != nil {
		return game.Toss{}, nil, err
	}
	return toss, s, nil
}

// ready 会话是否可用
func (t *Table) ready() (*game.Session, error) {
	if t.phase != PhaseReady || t.session == nil {
		return nil, fmt.Errorf("%w: phase %s", game.ErrNotReady, t.phase)
	}
	return t.session, nil
}

// Apply 在牌桌上执行一个意图，返回需要发给该玩家的消息
func (t *Table) Apply(rng *rand.Rand, in Input) ([]any, error) {
	switch in.Kind {
	case IntentStart:
		return t.startRound(rng, in, in.Round)
	case IntentNext:
		s, err := t.ready()
		if err != nil {
			return nil, err
		}
		next, ok := t.catalog.Next(s.Round().ID)
		if !ok {
			return nil, fmt.Errorf("%w: no round after %d", game.ErrUnknownRound, s.Round().ID)
		}
		return t.startRound(rng, in, next)
	}

	s, err := t.ready()
	if err != nil {
		return nil, err
	}
	switch in.Kind {
	case IntentDrop:
		if err := s.AppendMove(in.Move); err != nil {
			return nil, err
		}
		t.stopPlayback()
	case IntentUndo:
		if _, err := s.RemoveLast(); err != nil {
			return nil, err
		}
		t.stopPlayback()
	case IntentReset:
		s.Reset()
		t.stopPlayback()
	case IntentVerify:
		v, err := s.Verify()
		if err != nil {
			return nil, err
		}
		msg := VerdictMessage{Type: "verdict", Seq: in.Seq, Result: v, Round: s.Round().ID, TargetStep: s.TargetStep()}
		if v == game.Correct {
			if next, ok := t.catalog.Next(s.Round().ID); ok {
				msg.NextRound = next
			}
		}
		return []any{msg, t.state(in.Seq)}, nil
	case IntentStep:
		t.stopPlayback()
		if !s.StepPlayback(in.Direction) {
			return []any{t.state(in.Seq)}, nil
		}
		pose, _ := s.PoseAt()
		return []any{PoseMessage{Type: "pose", Pose: pose}, t.state(in.Seq)}, nil
	case IntentPlay:
		pose, err := t.startPlayback()
		if err != nil {
			return nil, err
		}
		return []any{PoseMessage{Type: "pose", Pose: pose, Done: len(s.Placement()) == 1}}, nil
	case IntentStop:
		t.stopPlayback()
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadIntent, in.Kind)
	}
	return []any{t.state(in.Seq)}, nil
}

func (t *Table) startRound(rng *rand.Rand, in Input, roundID int) ([]any, error) {
	toss, err := t.Start(rng, roundID)
	if err != nil {
		return nil, err
	}
	return []any{TossMessage{Type: "toss", Round: roundID, Toss: toss}, t.state(in.Seq)}, nil
}

func (t *Table) state(seq int64) StateMessage {
	msg := StateMessage{Type: "state", Seq: seq, Phase: t.phase.String()}
	if t.session != nil {
		snap := t.session.Snapshot()
		msg.Snapshot = &snap
	}
	return msg
}

// startPlayback 从第一个牌块开始自动回放
func (t *Table) startPlayback() (game.Pose, error) {
	s, err := t.ready()
	if err != nil {
		return game.Pose{}, err
	}
	s.RewindPlayback()
	pose, ok := s.PoseAt()
	if !ok {
		return game.Pose{}, game.ErrEmptyPlacement
	}
	t.playing = len(s.Placement()) > 1
	t.playGen = t.generation
	t.sinceStep = 0
	return pose, nil
}

func (t *Table) stopPlayback() {
	t.playing = false
	t.sinceStep = 0
}

// advancePlayback 每 every 个 Tick 前进一步；ok 表示本 Tick 产生了新位置
func (t *Table) advancePlayback(every int) (pose game.Pose, done bool, ok bool) {
	if !t.Playing() || t.session == nil {
		t.playing = false
		return game.Pose{}, false, false
	}
	t.sinceStep++
	if t.sinceStep < every {
		return game.Pose{}, false, false
	}
	t.sinceStep = 0
	if !t.session.StepPlayback(game.Forward) {
		t.stopPlayback()
		return game.Pose{}, true, false
	}
	pose, _ = t.session.PoseAt()
	if t.session.Cursor() == len(t.session.Placement())-1 {
		t.stopPlayback()
		done = true
	}
	return pose, done, true
}

// roster 进度摘要
func (t *Table) roster(id PlayerID) RosterEntry {
	e := RosterEntry{ID: string(id), State: t.phase.String()}
	if t.session != nil {
		e.Round = t.session.Round().ID
		e.Target = t.session.TargetStep()
		e.Placed = len(t.session.Placement())
		e.State = t.session.State().String()
	}
	return e
}
