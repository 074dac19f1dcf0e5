package server

import (
	"net/http"

	"hopscotch/config"
	"hopscotch/game"
)

// Server 汇总 HTTP 入口：WebSocket、关卡表、管理与监控接口
type Server struct {
	rooms   *RoomManager
	catalog *game.Catalog
	webDir  string
}

// ValidationMode 将配置字符串转换为校验时机
func ValidationMode(name string) game.ValidationMode {
	if name == "submit" {
		return game.ValidateOnSubmit
	}
	return game.ValidateOnAppend
}

// New 按配置创建服务
func New(cfg *config.Config, catalog *game.Catalog) *Server {
	return &Server{
		rooms:   NewRoomManager(catalog, cfg.Room, ValidationMode(cfg.Session.Validation), cfg.Session.Seed),
		catalog: catalog,
		webDir:  cfg.WebDir,
	}
}

// Rooms 房间管理器
func (s *Server) Rooms() *RoomManager { return s.rooms }

// Handler 路由表
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/rounds", s.HandleRounds)
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if s.webDir != "" {
		// 前后端分离：将 / 映射到 web 目录的静态资源
		mux.Handle("/", http.FileServer(http.Dir(s.webDir)))
	}
	return mux
}

// Close 停止所有房间
func (s *Server) Close() {
	s.rooms.Shutdown()
}

func roomParam(r *http.Request) string {
	if id := r.URL.Query().Get("room"); id != "" {
		return id
	}
	return "room-1"
}
