// Package config 读取服务配置：YAML 文件 + 环境变量覆盖
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config 服务的全部配置
type Config struct {
	Addr    string        `yaml:"addr" env:"HOPSCOTCH_ADDR"`
	WebDir  string        `yaml:"web_dir" env:"HOPSCOTCH_WEB_DIR"`
	Log     LogConfig     `yaml:"log" envPrefix:"HOPSCOTCH_LOG_"`
	Room    RoomConfig    `yaml:"room" envPrefix:"HOPSCOTCH_ROOM_"`
	Session SessionConfig `yaml:"session" envPrefix:"HOPSCOTCH_SESSION_"`
}

// LogConfig 日志文件与滚动策略
type LogConfig struct {
	File       string `yaml:"file" env:"FILE"`
	Level      string `yaml:"level" env:"LEVEL"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" env:"COMPRESS"`
}

// RoomConfig 房间 Tick 与限流
type RoomConfig struct {
	TicksPerSecond     int `yaml:"ticks_per_second" env:"TICKS_PER_SECOND"`
	MaxInputsPerTick   int `yaml:"max_inputs_per_tick" env:"MAX_INPUTS_PER_TICK"`
	PlaybackEveryTicks int `yaml:"playback_every_ticks" env:"PLAYBACK_EVERY_TICKS"`
	InputBuffer        int `yaml:"input_buffer" env:"INPUT_BUFFER"`
}

// SessionConfig 会话规则
type SessionConfig struct {
	// Validation: "append"（每次放置即校验）或 "submit"（提交时校验）
	Validation string `yaml:"validation" env:"VALIDATION"`
	// Seed 非 0 时使用固定随机种子，便于复现
	Seed int64 `yaml:"seed" env:"SEED"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Addr:   ":8080",
		WebDir: "web",
		Log: LogConfig{
			File:       "app.log",
			Level:      "debug",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Room: RoomConfig{
			TicksPerSecond:     20,
			MaxInputsPerTick:   4,
			PlaybackEveryTicks: 20, // 每秒一步，与动画节奏一致
			InputBuffer:        256,
		},
		Session: SessionConfig{
			Validation: "append",
		},
	}
}

// Load 读取 YAML 配置；文件不存在时使用默认值，随后应用环境变量
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is empty")
	}
	if c.Room.TicksPerSecond <= 0 || c.Room.TicksPerSecond > 1000 {
		return fmt.Errorf("config: ticks_per_second %d out of range", c.Room.TicksPerSecond)
	}
	if c.Room.MaxInputsPerTick <= 0 {
		return fmt.Errorf("config: max_inputs_per_tick must be positive, got %d", c.Room.MaxInputsPerTick)
	}
	if c.Room.PlaybackEveryTicks <= 0 {
		return fmt.Errorf("config: playback_every_ticks must be positive, got %d", c.Room.PlaybackEveryTicks)
	}
	if c.Room.InputBuffer <= 0 {
		return fmt.Errorf("config: input_buffer must be positive, got %d", c.Room.InputBuffer)
	}
	switch c.Session.Validation {
	case "append", "submit":
	default:
		return fmt.Errorf("config: unknown validation mode %q", c.Session.Validation)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}

// Save 以 YAML 写出配置
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
