package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port default = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Audit.MaxPartitions != 30 {
		t.Errorf("audit.max_partitions default = %d, want 30", cfg.Audit.MaxPartitions)
	}
	if cfg.Audit.RotationCheckHours != 24 {
		t.Errorf("audit.rotation_check_hours default = %d, want 24", cfg.Audit.RotationCheckHours)
	}
	if cfg.Storage.DefaultBackend != "local" {
		t.Errorf("storage.default_backend default = %q, want local", cfg.Storage.DefaultBackend)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging.format default = %q, want json", cfg.Logging.Format)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9000
audit:
  directory: /var/log/vitrine/audit
  max_partitions: 60
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("server.port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Audit.Directory != "/var/log/vitrine/audit" {
		t.Errorf("audit.directory = %q", cfg.Audit.Directory)
	}
	if cfg.Audit.MaxPartitions != 60 {
		t.Errorf("audit.max_partitions = %d, want 60", cfg.Audit.MaxPartitions)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("VTR_SERVER_PORT", "9100")
	t.Setenv("VTR_AUDIT_MAX_PARTITIONS", "7")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("server.port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Audit.MaxPartitions != 7 {
		t.Errorf("audit.max_partitions = %d, want env override 7", cfg.Audit.MaxPartitions)
	}
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	if _, err := Load(writeConfig(t, "server:\n  port: -1\n")); err == nil {
		t.Error("Load() = nil error for negative port, want error")
	}
}

func TestLoad_RejectsUnknownStorageBackend(t *testing.T) {
	if _, err := Load(writeConfig(t, "storage:\n  default_backend: gcs\n")); err == nil {
		t.Error("Load() = nil error for unknown backend, want error")
	}
}

func TestLoad_S3BackendRequiresBucketAndRegion(t *testing.T) {
	if _, err := Load(writeConfig(t, "storage:\n  default_backend: s3\n")); err == nil {
		t.Error("Load() = nil error for s3 without bucket, want error")
	}

	cfg, err := Load(writeConfig(t, `
storage:
  default_backend: s3
  s3:
    bucket: vitrine-uploads
    region: eu-west-3
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.S3.AuthMethod != "default" {
		t.Errorf("s3.auth_method default = %q, want default", cfg.Storage.S3.AuthMethod)
	}
}

// writeConfig writes a YAML snippet to a temp file and returns its path.
func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
