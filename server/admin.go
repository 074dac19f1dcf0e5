package server

import (
	"encoding/json"
	"net/http"

	"hopscotch/game"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新回放节奏与限流）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room, ok := s.rooms.Room(roomID)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}

	type cfg struct {
		MaxInputsPerTick   *int `json:"maxInputsPerTick,omitempty"`
		PlaybackEveryTicks *int `json:"playbackEveryTicks,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		maxInputs := int(room.maxInputsPerTick.Load())
		every := int(room.playbackEveryTicks.Load())
		writeJSON(w, http.StatusOK, cfg{MaxInputsPerTick: &maxInputs, PlaybackEveryTicks: &every})
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if (body.MaxInputsPerTick != nil && *body.MaxInputsPerTick <= 0) ||
			(body.PlaybackEveryTicks != nil && *body.PlaybackEveryTicks <= 0) {
			http.Error(w, "values must be positive", http.StatusBadRequest)
			return
		}
		if body.MaxInputsPerTick != nil {
			room.maxInputsPerTick.Store(int32(*body.MaxInputsPerTick))
		}
		if body.PlaybackEveryTicks != nil {
			room.playbackEveryTicks.Store(int32(*body.PlaybackEveryTicks))
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		Log.Infow("config updated", "room", roomID,
			"maxInputsPerTick", room.maxInputsPerTick.Load(),
			"playbackEveryTicks", room.playbackEveryTicks.Load())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room, ok := s.rooms.Room(roomID)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    roomID,
		"metrics": room.metrics.Snapshot(),
	})
}

// RoundView 关卡表的对外视图
type RoundView struct {
	ID     int                 `json:"id"`
	Moves  []game.Move         `json:"moves"`
	Labels []string            `json:"labels"`
	Steps  []game.Displacement `json:"steps"`
}

// RoundViews 按编号升序列出所有关卡
func RoundViews(c *game.Catalog) []RoundView {
	views := make([]RoundView, 0, len(c.Rounds()))
	for _, id := range c.Rounds() {
		seq, err := c.SequenceFor(id)
		if err != nil {
			continue
		}
		v := RoundView{ID: id, Moves: seq}
		for _, m := range seq {
			v.Labels = append(v.Labels, m.Label())
			v.Steps = append(v.Steps, m.Displacement())
		}
		views = append(views, v)
	}
	return views
}

// HandleRounds 输出关卡表
// GET /rounds
func (s *Server) HandleRounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, RoundViews(s.catalog))
}
