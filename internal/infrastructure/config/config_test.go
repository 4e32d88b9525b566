package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.EnvType != "LOCAL" {
		t.Errorf("EnvType = %q, want LOCAL", cfg.EnvType)
	}
	if cfg.DBDriver != DriverMySQL {
		t.Errorf("DBDriver = %q, want mysql", cfg.DBDriver)
	}
	if cfg.DefaultPackageLimit != 5 {
		t.Errorf("DefaultPackageLimit = %d, want 5", cfg.DefaultPackageLimit)
	}
	if cfg.CatalogPageSize != 6 {
		t.Errorf("CatalogPageSize = %d, want 6", cfg.CatalogPageSize)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
}

func TestLoadConfigPrefixOverrides(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantHost string
		wantType string
	}{
		{
			name:     "local prefix wins",
			env:      map[string]string{"DB_HOST": "db.internal", "LOCAL_DB_HOST": "127.0.0.1"},
			wantHost: "127.0.0.1",
			wantType: "LOCAL",
		},
		{
			name:     "server prefix wins",
			env:      map[string]string{"ENV_TYPE": "server", "DB_HOST": "db.internal", "SERVER_DB_HOST": "10.0.0.5", "LOCAL_DB_HOST": "127.0.0.1"},
			wantHost: "10.0.0.5",
			wantType: "SERVER",
		},
		{
			name:     "unprefixed fallback",
			env:      map[string]string{"ENV_TYPE": "SERVER", "DB_HOST": "db.internal"},
			wantHost: "db.internal",
			wantType: "SERVER",
		},
		{
			name:     "unknown env type falls back to local",
			env:      map[string]string{"ENV_TYPE": "staging", "LOCAL_DB_HOST": "127.0.0.1"},
			wantHost: "127.0.0.1",
			wantType: "LOCAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfigFrom(tt.env)
			if err != nil {
				t.Fatalf("LoadConfigFrom: %v", err)
			}
			if cfg.DBHost != tt.wantHost {
				t.Errorf("DBHost = %q, want %q", cfg.DBHost, tt.wantHost)
			}
			if cfg.EnvType != tt.wantType {
				t.Errorf("EnvType = %q, want %q", cfg.EnvType, tt.wantType)
			}
		})
	}
}

func TestLoadConfigFromProcessEnv(t *testing.T) {
	t.Setenv("ENV_TYPE", "LOCAL")
	t.Setenv("LOCAL_DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/assets.db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBDriver != DriverSQLite {
		t.Fatalf("DBDriver = %q, want sqlite", cfg.DBDriver)
	}
	if !strings.HasPrefix(cfg.GetDSN(), "/tmp/assets.db?") {
		t.Errorf("GetDSN = %q", cfg.GetDSN())
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"bad qos", map[string]string{"MQTT_QOS": "3"}},
		{"zero page size", map[string]string{"CATALOG_PAGE_SIZE": "0"}},
		{"unparsable duration", map[string]string{"REQUEST_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfigFrom(tt.env); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestGetDSNPerDriver(t *testing.T) {
	cfg := &Config{DBDriver: DriverPostgres, DBHost: "pg", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "assets"}
	if got := cfg.GetDSN(); !strings.Contains(got, "host=pg") || !strings.Contains(got, "dbname=assets") {
		t.Errorf("postgres DSN = %q", got)
	}

	cfg.DBDriver = DriverMySQL
	cfg.DBPort = "3306"
	if got := cfg.GetDSN(); !strings.HasPrefix(got, "u:p@tcp(pg:3306)/assets?") {
		t.Errorf("mysql DSN = %q", got)
	}
	if got := cfg.GetRedisAddr(); got != ":" {
		t.Errorf("GetRedisAddr = %q", got)
	}
}
