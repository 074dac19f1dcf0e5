package game

// Pose 角色在某一步之后的位置
// Y 为累计前进距离；X 只取当前动作的横向偏移，不累加
type Pose struct {
	Index  int    `json:"index"`
	Move   Move   `json:"move"`
	Y      int    `json:"y"`
	X      int    `json:"x"`
	Sprite string `json:"sprite,omitempty"`
}

// Trajectory 已摆放动作对应的逐步位置
func Trajectory(moves []Move) []Pose {
	poses := make([]Pose, len(moves))
	y := 0
	for i, m := range moves {
		d := m.Displacement()
		y += d.Vertical
		poses[i] = Pose{Index: i, Move: m, Y: y, X: d.Horizontal, Sprite: m.Sprite()}
	}
	return poses
}

// PoseAt 游标处的位置；没有摆放时 ok=false
func (s *Session) PoseAt() (Pose, bool) {
	if len(s.placement) == 0 {
		return Pose{}, false
	}
	return Trajectory(s.placement[:s.cursor+1])[s.cursor], true
}

// Snapshot 对外可观察的会话状态
type Snapshot struct {
	SessionID  string   `json:"sessionId"`
	Round      int      `json:"round"`
	TargetStep int      `json:"targetStep"`
	Placement  []Move   `json:"placement"`
	Labels     []string `json:"labels"`
	State      State    `json:"state"`
	Mismatch   bool     `json:"mismatch"`
	MismatchAt int      `json:"mismatchAt"`
	Cursor     int      `json:"cursor"`
	Remaining  int      `json:"remaining"`
	Poses      []Pose   `json:"poses"`
}

func (s *Session) Snapshot() Snapshot {
	placement := make([]Move, len(s.placement))
	copy(placement, s.placement)
	labels := make([]string, len(s.placement))
	for i, m := range s.placement {
		labels[i] = m.Label()
	}
	return Snapshot{
		SessionID:  s.id,
		Round:      s.round.ID,
		TargetStep: s.target,
		Placement:  placement,
		Labels:     labels,
		State:      s.state,
		Mismatch:   s.Mismatch(),
		MismatchAt: s.mismatchAt,
		Cursor:     s.cursor,
		Remaining:  s.Remaining(),
		Poses:      Trajectory(s.placement),
	}
}
