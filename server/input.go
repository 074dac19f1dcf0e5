package server

import (
	"errors"
	"fmt"
	"strings"

	"hopscotch/game"
)

// IntentKind 客户端意图类型
type IntentKind int

const (
	IntentStart IntentKind = iota + 1
	IntentNext
	IntentDrop
	IntentUndo
	IntentVerify
	IntentReset
	IntentStep
	IntentPlay
	IntentStop
)

var intentNames = map[string]IntentKind{
	"start":  IntentStart,
	"next":   IntentNext,
	"drop":   IntentDrop,
	"undo":   IntentUndo,
	"verify": IntentVerify,
	"reset":  IntentReset,
	"step":   IntentStep,
	"play":   IntentPlay,
	"stop":   IntentStop,
}

func (k IntentKind) String() string {
	for name, v := range intentNames {
		if v == k {
			return name
		}
	}
	return fmt.Sprintf("intent(%d)", int(k))
}

// ErrBadIntent 无法解析的客户端消息
var ErrBadIntent = errors.New("bad intent")

// Input 客户端输入（意图），由服务端在 Tick 中解释并驱动牌桌
type Input struct {
	PlayerID  PlayerID
	Kind      IntentKind
	Round     int
	Move      game.Move
	Direction game.Direction
	Seq       int64 // 客户端本地序列号，原样回显
}

// 入站输入的 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"drop","move":"Skip-HopRight","seq":3}
type InputMessage struct {
	Type      string `json:"type"`
	Round     int    `json:"round,omitempty"`
	Move      string `json:"move,omitempty"`
	Direction string `json:"direction,omitempty"`
	Seq       int64  `json:"seq,omitempty"`
}

// ToInput 校验并转换为 Input
func (im InputMessage) ToInput(pid PlayerID) (Input, error) {
	kind, ok := intentNames[strings.ToLower(strings.TrimSpace(im.Type))]
	if !ok {
		return Input{}, fmt.Errorf("%w: type %q", ErrBadIntent, im.Type)
	}
	in := Input{PlayerID: pid, Kind: kind, Round: im.Round, Seq: im.Seq}
	switch kind {
	case IntentDrop:
		m, err := game.ParseMove(im.Move)
		if err != nil {
			return Input{}, err
		}
		in.Move = m
	case IntentStep:
		dir, ok := game.ParseDirection(im.Direction)
		if !ok {
			return Input{}, fmt.Errorf("%w: direction %q", ErrBadIntent, im.Direction)
		}
		in.Direction = dir
	}
	return in, nil
}

// 出站消息

type StateMessage struct {
	Type  string `json:"type"`
	Seq   int64  `json:"seq,omitempty"`
	Phase string `json:"phase"`
	*game.Snapshot
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Seq     int64  `json:"seq,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TossMessage struct {
	Type  string `json:"type"`
	Round int    `json:"round"`
	game.Toss
}

type VerdictMessage struct {
	Type       string       `json:"type"`
	Seq        int64        `json:"seq,omitempty"`
	Result     game.Verdict `json:"result"`
	Round      int          `json:"round"`
	TargetStep int          `json:"targetStep"`
	NextRound  int          `json:"nextRound,omitempty"`
}

type PoseMessage struct {
	Type string `json:"type"`
	Done bool   `json:"done"`
	game.Pose
}

type RosterMessage struct {
	Type    string        `json:"type"`
	Players []RosterEntry `json:"players"`
}

// errorCode 统一错误码，包括传输层自身的 BAD_INTENT
func errorCode(err error) string {
	if errors.Is(err, ErrBadIntent) {
		return "BAD_INTENT"
	}
	return string(game.ErrorCode(err))
}

func newErrorMessage(seq int64, err error) ErrorMessage {
	return ErrorMessage{Type: "error", Seq: seq, Code: errorCode(err), Message: err.Error()}
}
