package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/agrovista/mediavault/bytesize"
)

func validConfig() *Config {
	return &Config{
		Debug: true,
		Server: Server{
			Address:   "127.0.0.1",
			Port:      8080,
			PublicUrl: "https://example.org",
			Limits: ServerLimits{
				MaxRequestSize:  100 * bytesize.MiB,
				MaxMultipartMem: 10 * bytesize.MiB,
			},
		},
		Media: Media{
			ImageCeiling:   500 * bytesize.KiB,
			VideoCeiling:   100 * bytesize.MiB,
			TotalCeiling:   1 * bytesize.GiB,
			MaxDimension:   1920,
			InitialQuality: 80,
		},
		Storage: Storage{
			Strategy: "badger",
			Badger: &BadgerStrategy{
				Path: "/var/lib/mediavault/db",
			},
		},
	}
}

func TestValidate_Success(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
}

func TestValidate_FailsForRelativeBadgerPath(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Badger.Path = "relative/db"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to fail for relative path")
	}
}

func TestValidate_FailsForUnknownStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Strategy = "s3"

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to fail for unknown strategy")
	}
}

func TestValidate_FilesystemRequiresBlock(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Strategy = "filesystem"
	cfg.Storage.Badger = nil
	cfg.Storage.Filesystem = nil

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to fail when filesystem block is missing")
	}
}

func TestValidate_FilesystemStrategy(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Strategy = "filesystem"
	cfg.Storage.Badger = nil
	cfg.Storage.Filesystem = &FilesystemStrategy{
		Path:      "/var/lib/mediavault/media",
		PublicUrl: "https://media.example.org",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
}

func TestValidate_CeilingOrdering(t *testing.T) {
	cfg := validConfig()
	cfg.Media.VideoCeiling = cfg.Media.ImageCeiling - 1

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to fail when video ceiling is below image ceiling")
	}

	cfg = validConfig()
	cfg.Media.TotalCeiling = cfg.Media.VideoCeiling - 1

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation to fail when total ceiling is below video ceiling")
	}
}

func TestLoadConfig_Success(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yml")

	yaml := `debug: true
server:
  address: "127.0.0.1"
  port: 8080
  public_url: "https://example.org"
  limits:
    max_request_size: "100Mi"
    max_multipart_mem: "10Mi"
media:
  image_ceiling: "500Ki"
  video_ceiling: "100Mi"
  total_ceiling: "1Gi"
  max_dimension: 1920
  initial_quality: 80
storage:
  strategy: "filesystem"
  filesystem:
    path: "/tmp/mediavault"
    public_url: "https://media.example.org"
`

	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Server.PublicUrl != "https://example.org" {
		t.Fatalf("unexpected public url: %q", cfg.Server.PublicUrl)
	}
	if cfg.Media.ImageCeiling != 500*bytesize.KiB {
		t.Fatalf("byte size not decoded from string: %v", cfg.Media.ImageCeiling)
	}
	if cfg.Media.TotalCeiling != 1*bytesize.GiB {
		t.Fatalf("byte size not decoded from string: %v", cfg.Media.TotalCeiling)
	}
	if cfg.Storage.Filesystem == nil || cfg.Storage.Filesystem.Path != "/tmp/mediavault" {
		t.Fatalf("unexpected storage block: %+v", cfg.Storage.Filesystem)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yml"); err == nil {
		t.Fatalf("expected error when config file is missing")
	}
}

func TestLoadConfig_InvalidConfigRejected(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yml")

	yaml := `server:
  address: "127.0.0.1"
  port: 8080
  public_url: "https://example.org"
  limits:
    max_request_size: "100Mi"
    max_multipart_mem: "10Mi"
media:
  image_ceiling: "500Ki"
  video_ceiling: "100Mi"
  total_ceiling: "1Gi"
  max_dimension: 1920
  initial_quality: 80
storage:
  strategy: "badger"
`

	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected validation failure for badger strategy without badger block")
	}
}

func TestCustomValidators(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("abspath", ValidateAbsPath)

	type sample struct {
		Path string `validate:"abspath"`
	}

	if err := v.Struct(sample{Path: "/absolute/path"}); err != nil {
		t.Fatalf("expected absolute path to pass, got %v", err)
	}
	if err := v.Struct(sample{Path: "relative/path"}); err == nil {
		t.Fatalf("expected relative path to fail")
	}
	if err := v.Struct(sample{Path: ""}); err == nil {
		t.Fatalf("expected empty path to fail")
	}
}
