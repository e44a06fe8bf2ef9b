package cacheinfra

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendMemory {
		t.Errorf("expected Backend to be %q, got %q", BackendMemory, cfg.Backend)
	}

	if cfg.Capacity != 50 {
		t.Errorf("expected Capacity to be 50, got %d", cfg.Capacity)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}

	if cfg.CleanupInterval != time.Minute {
		t.Errorf("expected CleanupInterval to be 1 minute, got %v", cfg.CleanupInterval)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid default config",
			cfg:  DefaultConfig(),
		},
		{
			name:      "unknown backend",
			cfg:       Config{Backend: "memcached", Capacity: 10, TTL: time.Minute},
			wantError: true,
			errorMsg:  "must be one of",
		},
		{
			name:      "invalid capacity - zero",
			cfg:       Config{Capacity: 0, TTL: time.Minute},
			wantError: true,
			errorMsg:  "must be greater than 0",
		},
		{
			name:      "invalid TTL - zero",
			cfg:       Config{Capacity: 10, TTL: 0},
			wantError: true,
			errorMsg:  "must be greater than 0",
		},
		{
			name:      "negative cleanup interval",
			cfg:       Config{Capacity: 10, TTL: time.Minute, CleanupInterval: -time.Second},
			wantError: true,
			errorMsg:  "must be non-negative",
		},
		{
			name: "memory backend ignores shard settings",
			cfg:  Config{Backend: BackendMemory, Capacity: 10, TTL: time.Minute, NumShards: 0},
		},
		{
			name:      "sturdyc requires shards",
			cfg:       Config{Backend: BackendSturdyc, Capacity: 10, TTL: time.Minute, NumShards: 0, EvictionPercentage: 10},
			wantError: true,
			errorMsg:  "must be greater than 0",
		},
		{
			name:      "sturdyc eviction percentage too high",
			cfg:       Config{Backend: BackendSturdyc, Capacity: 10, TTL: time.Minute, NumShards: 4, EvictionPercentage: 101},
			wantError: true,
			errorMsg:  "must be between 1 and 100",
		},
		{
			name: "sturdyc negative early refresh",
			cfg: Config{
				Backend: BackendSturdyc, Capacity: 10, TTL: time.Minute, NumShards: 4, EvictionPercentage: 10,
				EarlyRefresh: &EarlyRefreshConfig{MinAsyncRefreshTime: -time.Second},
			},
			wantError: true,
			errorMsg:  "must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := Config{
		EarlyRefresh: &EarlyRefreshConfig{
			MinAsyncRefreshTime: time.Second,
			MaxAsyncRefreshTime: 2 * time.Second,
			SyncRefreshTime:     3 * time.Second,
			RetryBaseDelay:      time.Millisecond,
		},
		MissingRecordStorage: true,
		EvictionInterval:     time.Minute,
	}

	if got := len(cfg.ToSturdycOptions()); got != 3 {
		t.Errorf("expected 3 options, got %d", got)
	}

	if got := len(Config{}.ToSturdycOptions()); got != 0 {
		t.Errorf("expected no options for zero config, got %d", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	want := "config error in field Capacity: must be greater than 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewService_SelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
	}{
		{backend: ""},
		{backend: BackendMemory},
		{backend: BackendSturdyc},
		{backend: BackendRistretto},
	}

	for _, tt := range tests {
		t.Run("backend "+tt.backend, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend = tt.backend
			cfg.CleanupInterval = 0

			svc, err := NewService(cfg)
			if err != nil {
				t.Fatalf("NewService() failed: %v", err)
			}
			defer svc.Close()

			want := tt.backend
			if want == "" {
				want = BackendMemory
			}
			if got := svc.Stats().Backend; got != want {
				t.Errorf("expected backend %q, got %q", want, got)
			}
		})
	}
}
