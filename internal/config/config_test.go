package config

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "https base url", mutate: func(c *Config) { c.Server.BaseURL = "https://example.com" }},
		{name: "missing host", mutate: func(c *Config) { c.Server.BaseURL = "http://" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Server.Timeout = 0 }, wantErr: true},
		{name: "zero breakpoint", mutate: func(c *Config) { c.UI.MobileBreakpoint = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.DevServer.Port = 70000 }, wantErr: true},
		{name: "telemetry without endpoint", mutate: func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.Endpoint = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1500ms")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v, want 1.5s", d.Duration())
	}
	if d.Milliseconds() != 1500 {
		t.Errorf("Milliseconds() = %d, want 1500", d.Milliseconds())
	}

	if err := d.UnmarshalText([]byte("-1s")); err == nil {
		t.Error("UnmarshalText() should reject negative durations")
	}
}
