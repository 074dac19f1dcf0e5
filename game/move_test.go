package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		in   string
		want Move
	}{
		{"Hop", Hop},
		{"skip", Skip},
		{"JUMP", Jump},
		{"Skip-HopRight", SkipHopRight},
		{"skip & hopleft", SkipHopLeft},
		{"skiphopright", SkipHopRight},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMove("Cartwheel")
	assert.ErrorIs(t, err, ErrUnknownMove)
}

func TestMove_Displacement(t *testing.T) {
	assert.Equal(t, Displacement{Vertical: 80}, Hop.Displacement())
	assert.Equal(t, Displacement{Vertical: 150}, Skip.Displacement())
	assert.Equal(t, Displacement{Vertical: 80}, Jump.Displacement())
	assert.Equal(t, Displacement{Vertical: 80, Horizontal: 32}, SkipHopRight.Displacement())
	assert.Equal(t, Displacement{Vertical: 80, Horizontal: -32}, SkipHopLeft.Displacement())
	assert.Equal(t, "Skip & HopLeft", SkipHopLeft.Label())
	assert.Equal(t, "jump", Jump.Sprite())
	assert.Empty(t, Skip.Sprite())
}

func TestMove_JSON(t *testing.T) {
	b, err := json.Marshal([]Move{Hop, SkipHopRight})
	require.NoError(t, err)
	assert.JSONEq(t, `["Hop","Skip-HopRight"]`, string(b))

	var got []Move
	require.NoError(t, json.Unmarshal([]byte(`["jump","Skip-HopLeft"]`), &got))
	assert.Equal(t, []Move{Jump, SkipHopLeft}, got)

	assert.Error(t, json.Unmarshal([]byte(`["Twirl"]`), &got))
}

func TestTrajectory(t *testing.T) {
	poses := Trajectory([]Move{Hop, SkipHopRight, Skip})
	require.Len(t, poses, 3)
	assert.Equal(t, Pose{Index: 0, Move: Hop, Y: 80, X: 0, Sprite: "hop"}, poses[0])
	assert.Equal(t, Pose{Index: 1, Move: SkipHopRight, Y: 160, X: 32, Sprite: "hop"}, poses[1])
	// 横向偏移不累加
	assert.Equal(t, Pose{Index: 2, Move: Skip, Y: 310, X: 0}, poses[2])
}

func TestErrorCode(t *testing.T) {
	c := DefaultCatalog()
	_, err := c.PrefixFor(99, 1)
	assert.Equal(t, CodeUnknownRound, ErrorCode(err))
	_, err = c.PrefixFor(1, 9)
	assert.Equal(t, CodeInvalidTargetStep, ErrorCode(err))
	assert.Equal(t, Code(""), ErrorCode(nil))
	assert.True(t, IsSoft(ErrEmptyPlacement))
	assert.False(t, IsSoft(ErrCapacityExceeded))
}
