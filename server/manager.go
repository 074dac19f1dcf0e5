package server

import (
	"sort"
	"sync"

	"hopscotch/config"
	"hopscotch/game"
)

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	catalog *game.Catalog
	cfg     config.RoomConfig
	mode    game.ValidationMode
	seed    int64 // 0 表示每个房间使用随机种子
}

// NewRoomManager 创建房间管理器
func NewRoomManager(catalog *game.Catalog, cfg config.RoomConfig, mode game.ValidationMode, seed int64) *RoomManager {
	return &RoomManager{
		rooms:   make(map[string]*Room),
		catalog: catalog,
		cfg:     cfg,
		mode:    mode,
		seed:    seed,
	}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		seed := m.seed
		if seed == 0 {
			var err error
			if seed, err = game.NewSeed(); err != nil {
				return nil, err
			}
		}
		r = NewRoom(id, m.catalog, m.cfg, m.mode, seed)
		m.rooms[id] = r
		r.StartTicker()
		Log.Infow("room created", "room", id)
	}
	return r, nil
}

// Room 查找已存在的房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RoomIDs 升序的房间列表
func (m *RoomManager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown 停止全部房间并等待 Tick 协程退出
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()
	for _, r := range rooms {
		r.Stop()
	}
}
