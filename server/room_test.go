package server

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hopscotch/config"
	"hopscotch/game"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSender 记录发给玩家的消息
type fakeSender struct {
	mu     sync.Mutex
	msgs   []map[string]any
	closed bool
}

func (f *fakeSender) Enqueue(b []byte) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, m)
}

func (f *fakeSender) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSender) byType(typ string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]any
	for _, m := range f.msgs {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func testRoomConfig() config.RoomConfig {
	return config.RoomConfig{TicksPerSecond: 100, MaxInputsPerTick: 4, PlaybackEveryTicks: 1, InputBuffer: 64}
}

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	r := NewRoom("test", game.DefaultCatalog(), testRoomConfig(), game.ValidateOnAppend, 11)
	t.Cleanup(r.Stop)
	return r
}

func TestRoom_JoinStartDrop(t *testing.T) {
	r := newTestRoom(t)
	alice := &fakeSender{}
	r.RequestJoin("alice", alice)
	r.Tick()
	require.Contains(t, r.Players, PlayerID("alice"))
	require.Len(t, alice.byType("roster"), 1)

	r.OnInput(Input{PlayerID: "alice", Kind: IntentStart, Round: 1})
	r.Tick()
	require.Len(t, alice.byType("toss"), 1)
	s := r.Players["alice"].Table.Session()
	require.NotNil(t, s)

	// 第一个期望动作是 Skip，放 Jump 触发错位
	r.OnInput(Input{PlayerID: "alice", Kind: IntentDrop, Move: game.Jump, Seq: 9})
	r.Tick()
	states := alice.byType("state")
	last := states[len(states)-1]
	assert.Equal(t, true, last["mismatch"])
	assert.Equal(t, float64(0), last["mismatchAt"])
	assert.Equal(t, float64(9), last["seq"])

	snap := r.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap["rounds_started"])
	assert.Equal(t, int64(1), snap["drops_accepted"])
	assert.Equal(t, int64(1), snap["mismatches"])
}

func TestRoom_ErrorsAreSentBack(t *testing.T) {
	r := newTestRoom(t)
	bob := &fakeSender{}
	r.RequestJoin("bob", bob)
	r.Tick()

	r.OnInput(Input{PlayerID: "bob", Kind: IntentDrop, Move: game.Hop, Seq: 1})
	r.OnInput(Input{PlayerID: "bob", Kind: IntentStart, Round: 42, Seq: 2})
	r.Tick()

	errs := bob.byType("error")
	require.Len(t, errs, 2)
	assert.Equal(t, "NOT_READY", errs[0]["code"])
	assert.Equal(t, "UNKNOWN_ROUND", errs[1]["code"])
	assert.Equal(t, float64(2), errs[1]["seq"])
}

func TestRoom_CapacityRejectionCounted(t *testing.T) {
	r := newTestRoom(t)
	r.maxInputsPerTick.Store(100)
	c := &fakeSender{}
	r.RequestJoin("c", c)
	r.OnInput(Input{PlayerID: "c", Kind: IntentStart, Round: 6})
	r.Tick()

	s := r.Players["c"].Table.Session()
	for _, m := range s.Expected() {
		r.OnInput(Input{PlayerID: "c", Kind: IntentDrop, Move: m})
	}
	r.OnInput(Input{PlayerID: "c", Kind: IntentDrop, Move: game.Hop})
	r.OnInput(Input{PlayerID: "c", Kind: IntentVerify})
	r.Tick()

	errs := c.byType("error")
	require.Len(t, errs, 1)
	assert.Equal(t, "CAPACITY_EXCEEDED", errs[0]["code"])
	verdicts := c.byType("verdict")
	require.Len(t, verdicts, 1)
	assert.Equal(t, "correct", verdicts[0]["result"])

	snap := r.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap["drops_rejected"])
	assert.Equal(t, int64(1), snap["verified_correct"])
}

func TestRoom_RateLimit(t *testing.T) {
	r := newTestRoom(t)
	r.maxInputsPerTick.Store(2)
	p := &fakeSender{}
	r.RequestJoin("p", p)
	r.Tick()
	for i := 0; i < 5; i++ {
		r.OnInput(Input{PlayerID: "p", Kind: IntentStart, Round: 1})
	}
	r.Tick()

	snap := r.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap["inputs_accepted"])
	assert.Equal(t, int64(3), snap["rate_limited"])
}

func TestRoom_LeaveIgnoresReplacedConnection(t *testing.T) {
	r := newTestRoom(t)
	old := &fakeSender{}
	fresh := &fakeSender{}
	r.RequestJoin("dup", old)
	r.Tick()
	r.RequestJoin("dup", fresh)
	r.Tick()
	assert.True(t, old.isClosed())

	r.RequestLeave("dup", old)
	r.Tick()
	require.Contains(t, r.Players, PlayerID("dup"))
	assert.False(t, fresh.isClosed())

	r.RequestLeave("dup", fresh)
	r.Tick()
	assert.NotContains(t, r.Players, PlayerID("dup"))
	assert.True(t, fresh.isClosed())
}

func TestRoom_AutoPlaybackOnTicker(t *testing.T) {
	r := NewRoom("play", game.DefaultCatalog(), testRoomConfig(), game.ValidateOnSubmit, 5)
	defer r.Stop()
	p := &fakeSender{}
	r.RequestJoin("p", p)
	r.StartTicker()

	r.OnInput(Input{PlayerID: "p", Kind: IntentStart, Round: 4})
	require.Eventually(t, func() bool { return len(p.byType("toss")) == 1 }, 2*time.Second, 5*time.Millisecond)
	target := int(p.byType("toss")[0]["target"].(float64))

	for i := 0; i < target; i++ {
		r.OnInput(Input{PlayerID: "p", Kind: IntentDrop, Move: game.Hop})
	}
	require.Eventually(t, func() bool {
		states := p.byType("state")
		return len(states) > 0 && states[len(states)-1]["remaining"] == float64(0)
	}, 2*time.Second, 5*time.Millisecond)

	r.OnInput(Input{PlayerID: "p", Kind: IntentPlay})
	require.Eventually(t, func() bool {
		poses := p.byType("pose")
		return len(poses) == target && poses[len(poses)-1]["done"] == true
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRoom_StopClosesPlayers(t *testing.T) {
	r := NewRoom("stop", game.DefaultCatalog(), testRoomConfig(), game.ValidateOnAppend, 1)
	p := &fakeSender{}
	r.RequestJoin("p", p)
	r.StartTicker()
	require.Eventually(t, func() bool { return len(p.byType("roster")) == 1 }, 2*time.Second, 5*time.Millisecond)

	r.Stop()
	assert.True(t, p.isClosed())
	r.Stop()

	late := &fakeSender{}
	r.RequestJoin("late", late)
	assert.True(t, late.isClosed())
}
