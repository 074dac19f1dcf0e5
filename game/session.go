package game

import (
	"fmt"

	"github.com/google/uuid"
)

// State 摆放与校验状态
type State int

const (
	Collecting State = iota
	Full
	VerifiedCorrect
	VerifiedIncorrect
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Full:
		return "full"
	case VerifiedCorrect:
		return "verified-correct"
	case VerifiedIncorrect:
		return "verified-incorrect"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Verdict 校验结果
type Verdict int

const (
	Incorrect Verdict = iota
	Correct
)

func (v Verdict) String() string {
	if v == Correct {
		return "correct"
	}
	return "incorrect"
}

func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// Direction 回放方向
type Direction int

const (
	Forward Direction = iota
	Backward
)

// ParseDirection 解析 "forward"/"backward"（也接受 next/prev）
func ParseDirection(s string) (Direction, bool) {
	switch normalizeToken(s) {
	case "forward", "next", "fwd":
		return Forward, true
	case "backward", "back", "prev":
		return Backward, true
	}
	return 0, false
}

// ValidationMode 何时比较摆放与目标前缀
type ValidationMode int

const (
	// ValidateOnAppend 每次放置后立即比较，错位会被标记
	ValidateOnAppend ValidationMode = iota
	// ValidateOnSubmit 只在 Verify 时比较
	ValidateOnSubmit
)

// Option 会话构造选项
type Option func(*Session)

// WithValidationMode 设置校验时机
func WithValidationMode(mode ValidationMode) Option {
	return func(s *Session) { s.mode = mode }
}

// WithID 指定会话 ID（默认随机 UUID）
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// Session 一关的一次尝试：摆放、校验、逐步回放
//
// Session 不是并发安全的，调用方需保证单线程访问。
type Session struct {
	id        string
	round     Round
	target    int
	expected  []Move
	placement []Move
	state     State
	mode      ValidationMode
	// mismatchAt 第一个错位下标，-1 表示无错位
	mismatchAt int
	cursor     int
}

// NewSession 以关卡与目标步数创建会话
func NewSession(c *Catalog, roundID, targetStep int, opts ...Option) (*Session, error) {
	r, err := c.Round(roundID)
	if err != nil {
		return nil, err
	}
	expected, err := r.Prefix(targetStep)
	if err != nil {
		return nil, err
	}
	s := &Session{
		id:         uuid.NewString(),
		round:      r,
		target:     targetStep,
		expected:   expected,
		placement:  make([]Move, 0, targetStep),
		state:      Collecting,
		mismatchAt: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) ID() string        { return s.id }
func (s *Session) Round() Round      { return s.round }
func (s *Session) TargetStep() int   { return s.target }
func (s *Session) State() State      { return s.state }
func (s *Session) Cursor() int       { return s.cursor }
func (s *Session) Mismatch() bool    { return s.mismatchAt >= 0 }
func (s *Session) MismatchAt() int   { return s.mismatchAt }
func (s *Session) Remaining() int    { return s.target - len(s.placement) }
func (s *Session) Expected() []Move  { return append([]Move(nil), s.expected...) }
func (s *Session) Placement() []Move { return append([]Move(nil), s.placement...) }

// AppendMove 放入一个牌块；已摆满时拒绝
func (s *Session) AppendMove(m Move) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownMove, m)
	}
	if len(s.placement) >= s.target {
		return fmt.Errorf("%w: %d of %d placed", ErrCapacityExceeded, len(s.placement), s.target)
	}
	s.placement = append(s.placement, m)
	s.revalidate()
	return nil
}

// RemoveLast 移除最后一个牌块并回到 Collecting；空时为软错误
func (s *Session) RemoveLast() (Move, error) {
	if len(s.placement) == 0 {
		return 0, ErrEmptyPlacement
	}
	last := s.placement[len(s.placement)-1]
	s.placement = s.placement[:len(s.placement)-1]
	s.revalidate()
	s.clampCursor()
	return last, nil
}

// Verify 严格按顺序逐个比较，只在 Full 状态可用
func (s *Session) Verify() (Verdict, error) {
	if s.state != Full {
		return Incorrect, fmt.Errorf("%w: verify in state %s", ErrNotReady, s.state)
	}
	if equalMoves(s.placement, s.expected) {
		s.state = VerifiedCorrect
		return Correct, nil
	}
	s.state = VerifiedIncorrect
	return Incorrect, nil
}

// Reset 清空摆放，无条件回到 Collecting
func (s *Session) Reset() {
	s.placement = s.placement[:0]
	s.state = Collecting
	s.mismatchAt = -1
	s.cursor = 0
}

// StepPlayback 在 [0, len-1] 内移动回放游标，到边界返回 false
func (s *Session) StepPlayback(dir Direction) bool {
	if len(s.placement) == 0 {
		return false
	}
	next := s.cursor
	switch dir {
	case Forward:
		next++
	case Backward:
		next--
	default:
		return false
	}
	if next < 0 || next > len(s.placement)-1 {
		return false
	}
	s.cursor = next
	return true
}

// RewindPlayback 游标回到第一个牌块
func (s *Session) RewindPlayback() {
	s.cursor = 0
}

// revalidate 重新计算状态与错位；Verified 状态在任何改动后都会失效
func (s *Session) revalidate() {
	s.mismatchAt = -1
	if s.mode == ValidateOnAppend {
		for i, m := range s.placement {
			if m != s.expected[i] {
				s.mismatchAt = i
				break
			}
		}
	}
	if len(s.placement) == s.target && s.mismatchAt < 0 {
		s.state = Full
	} else {
		s.state = Collecting
	}
}

func (s *Session) clampCursor() {
	if s.cursor > len(s.placement)-1 {
		s.cursor = len(s.placement) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func equalMoves(a, b []Move) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
