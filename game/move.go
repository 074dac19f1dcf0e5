package game

import (
	"fmt"
	"strings"
)

// Move 跳房子的一个动作（牌块）
type Move int

const (
	Hop Move = iota + 1
	Skip
	Jump
	SkipHopRight
	SkipHopLeft
)

// Displacement 动作对应的位移（纵向前进，横向偏移）
type Displacement struct {
	Vertical   int `json:"y"`
	Horizontal int `json:"x"`
}

type moveInfo struct {
	token  string
	label  string
	disp   Displacement
	sprite string
}

var moveTable = map[Move]moveInfo{
	Hop:          {token: "Hop", label: "Hop", disp: Displacement{80, 0}, sprite: "hop"},
	Skip:         {token: "Skip", label: "Skip", disp: Displacement{150, 0}},
	Jump:         {token: "Jump", label: "Jump", disp: Displacement{80, 0}, sprite: "jump"},
	SkipHopRight: {token: "Skip-HopRight", label: "Skip & HopRight", disp: Displacement{80, 32}, sprite: "hop"},
	SkipHopLeft:  {token: "Skip-HopLeft", label: "Skip & HopLeft", disp: Displacement{80, -32}, sprite: "hop"},
}

// AllMoves 按固定顺序返回全部动作
func AllMoves() []Move {
	return []Move{Hop, Skip, Jump, SkipHopRight, SkipHopLeft}
}

// Valid 是否为已定义的动作
func (m Move) Valid() bool {
	_, ok := moveTable[m]
	return ok
}

// Displacement 位移只由动作类型决定
func (m Move) Displacement() Displacement {
	return moveTable[m].disp
}

// Label 展示用文字
func (m Move) Label() string {
	return moveTable[m].label
}

// Sprite 角色贴图：hop / jump，Skip 没有专门贴图
func (m Move) Sprite() string {
	return moveTable[m].sprite
}

func (m Move) String() string {
	if info, ok := moveTable[m]; ok {
		return info.token
	}
	return fmt.Sprintf("Move(%d)", int(m))
}

// ParseMove 解析动作标记，忽略大小写以及 "-"、"&"、空格分隔
func ParseMove(token string) (Move, error) {
	key := normalizeToken(token)
	for m, info := range moveTable {
		if normalizeToken(info.token) == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMove, token)
}

func normalizeToken(s string) string {
	r := strings.NewReplacer("-", "", "&", "", " ", "", "_", "")
	return strings.ToLower(r.Replace(s))
}

func (m Move) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMove, int(m))
	}
	return []byte(m.String()), nil
}

func (m *Move) UnmarshalText(b []byte) error {
	parsed, err := ParseMove(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Labels 把动作序列转换为标记列表（用于日志与展示）
func Labels(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}
