package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default hash algorithm is md5", func(t *testing.T) {
		t.Parallel()
		if cfg.HashAlgorithm != "md5" {
			t.Errorf("expected md5, got %q", cfg.HashAlgorithm)
		}
	})

	t.Run("default thresholds", func(t *testing.T) {
		t.Parallel()
		if cfg.ImageSimilarityThreshold != 0.95 {
			t.Errorf("expected image threshold 0.95, got %v", cfg.ImageSimilarityThreshold)
		}
		if cfg.TextContainmentThreshold != 0.8 {
			t.Errorf("expected text threshold 0.8, got %v", cfg.TextContainmentThreshold)
		}
	})

	t.Run("default chunk size is 8192", func(t *testing.T) {
		t.Parallel()
		if cfg.ChunkSize != 8192 {
			t.Errorf("expected 8192, got %d", cfg.ChunkSize)
		}
	})

	t.Run("no upper size bound", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxFileSize != nil {
			t.Errorf("expected nil MaxFileSize, got %d", *cfg.MaxFileSize)
		}
	})

	t.Run("index lives in the data directory", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cfg.IndexPath, XDGDataDir()) {
			t.Errorf("expected index under %q, got %q", XDGDataDir(), cfg.IndexPath)
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method, one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	limit := func(n int64) *int64 { return &n }

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{name: "zero chunk size", modify: func(c *Config) { c.ChunkSize = 0 }, wantErr: ErrInvalidChunkSize},
		{name: "negative min size", modify: func(c *Config) { c.MinFileSize = -1 }, wantErr: ErrInvalidSizeBounds},
		{name: "max below min", modify: func(c *Config) { c.MinFileSize = 10; c.MaxFileSize = limit(5) }, wantErr: ErrInvalidSizeBounds},
		{name: "max equal to min", modify: func(c *Config) { c.MinFileSize = 5; c.MaxFileSize = limit(5) }, wantErr: nil},
		{name: "image threshold above one", modify: func(c *Config) { c.ImageSimilarityThreshold = 1.5 }, wantErr: ErrInvalidImageThreshold},
		{name: "text threshold below zero", modify: func(c *Config) { c.TextContainmentThreshold = -0.1 }, wantErr: ErrInvalidTextThreshold},
		{name: "negative workers", modify: func(c *Config) { c.Workers = -2 }, wantErr: ErrInvalidWorkers},
		{name: "empty index path", modify: func(c *Config) { c.IndexPath = "" }, wantErr: ErrNoIndexPath},
		{name: "unknown algorithm is not rejected here", modify: func(c *Config) { c.HashAlgorithm = "crc32" }, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestEligibility tests the exclusion and extension helpers.
func TestEligibility(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("excluded by substring pattern", func(t *testing.T) {
		t.Parallel()
		if !cfg.ShouldExclude("/home/u/project/.git/config") {
			t.Error("expected .git path to be excluded")
		}
		if !cfg.ShouldExclude("/home/u/web/node_modules/x/index.js") {
			t.Error("expected node_modules path to be excluded")
		}
	})

	t.Run("excluded by extension ignoring case", func(t *testing.T) {
		t.Parallel()
		if !cfg.ShouldExclude("/tmp/work/file.TMP") {
			t.Error("expected .TMP to be excluded")
		}
		if !cfg.ShouldExclude("/photos/.DS_Store") {
			t.Error("expected .DS_Store to be excluded")
		}
	})

	t.Run("regular file is kept", func(t *testing.T) {
		t.Parallel()
		if cfg.ShouldExclude("/home/u/docs/report.txt") {
			t.Error("expected report.txt to be kept")
		}
	})

	t.Run("size bounds", func(t *testing.T) {
		t.Parallel()
		c := NewConfig()
		c.MinFileSize = 10
		max := int64(100)
		c.MaxFileSize = &max
		if c.SizeAllowed(9) {
			t.Error("9 bytes should be below the minimum")
		}
		if !c.SizeAllowed(10) || !c.SizeAllowed(100) {
			t.Error("bounds should be inclusive")
		}
		if c.SizeAllowed(101) {
			t.Error("101 bytes should be above the maximum")
		}
	})

	t.Run("text and image extensions", func(t *testing.T) {
		t.Parallel()
		if !cfg.IsSupportedText("/a/notes.MD") {
			t.Error("expected .MD to be text")
		}
		if !cfg.IsSupportedImage("/a/photo.JPEG") {
			t.Error("expected .JPEG to be an image")
		}
		if cfg.IsSupportedImage("/a/notes.md") {
			t.Error("expected .md not to be an image")
		}
		if cfg.IsSupportedText("/a/Makefile") {
			t.Error("expected extensionless file not to be text")
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadConfigFile("/nonexistent/path/.dupman.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("merges YAML over defaults", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".dupman.yaml")
		content := `hash_algorithm: sha256
max_file_size: 1048576
text_containment_threshold: 0.5
supported_text_extensions:
  - .txt
unknown_option: ignored
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HashAlgorithm != "sha256" {
			t.Errorf("expected sha256, got %q", cfg.HashAlgorithm)
		}
		if cfg.MaxFileSize == nil || *cfg.MaxFileSize != 1048576 {
			t.Errorf("expected max size 1048576, got %v", cfg.MaxFileSize)
		}
		if cfg.TextContainmentThreshold != 0.5 {
			t.Errorf("expected 0.5, got %v", cfg.TextContainmentThreshold)
		}
		if len(cfg.SupportedTextExtensions) != 1 {
			t.Errorf("expected list to be replaced, got %v", cfg.SupportedTextExtensions)
		}
		if cfg.ChunkSize != DefaultChunkSize {
			t.Errorf("expected missing key to keep default, got %d", cfg.ChunkSize)
		}
		if cfg.ConfigFilePath != configPath {
			t.Errorf("expected ConfigFilePath %q, got %q", configPath, cfg.ConfigFilePath)
		}
	})

	t.Run("accepts JSON", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "config.json")
		content := `{"hash_algorithm": "sha256", "min_file_size": 1, "max_file_size": null}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HashAlgorithm != "sha256" || cfg.MinFileSize != 1 || cfg.MaxFileSize != nil {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".dupman.yaml")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestLoad tests the fallback behaviour of Load.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("corrupt file falls back to defaults with an error", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "broken.yaml")
		if err := os.WriteFile(configPath, []byte(`chunk_size: [`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := Load(configPath)
		if err == nil {
			t.Error("expected the parse error to be reported")
		}
		if cfg == nil || cfg.ChunkSize != DefaultChunkSize {
			t.Errorf("expected default config, got %+v", cfg)
		}
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		t.Parallel()
		cfg, err := Load("/nonexistent/dupman.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config")
		}
	})
}

// TestSaveAndSet tests persisting edits back to disk.
func TestSaveAndSet(t *testing.T) {
	t.Parallel()

	t.Run("set updates scalar and list values", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.Set("chunk_size", "4096"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Set("exclude_extensions", "[.bak, .old]"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Set("max_file_size", "2048"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ChunkSize != 4096 {
			t.Errorf("expected 4096, got %d", cfg.ChunkSize)
		}
		if len(cfg.ExcludeExtensions) != 2 || cfg.ExcludeExtensions[0] != ".bak" {
			t.Errorf("unexpected extensions %v", cfg.ExcludeExtensions)
		}
		if cfg.MaxFileSize == nil || *cfg.MaxFileSize != 2048 {
			t.Errorf("unexpected max size %v", cfg.MaxFileSize)
		}
	})

	t.Run("set rejects unknown keys", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if err := cfg.Set("removable_drives", "[]"); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("expected ErrUnknownKey, got %v", err)
		}
	})

	t.Run("save then load round trip", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		cfg := NewConfig()
		cfg.HashAlgorithm = HashSHA256
		cfg.Verbose = true
		if err := cfg.Save(path); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		loaded, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.HashAlgorithm != HashSHA256 {
			t.Errorf("expected sha256, got %q", loaded.HashAlgorithm)
		}
		if loaded.Verbose {
			t.Error("verbose is a CLI-only option and must not be persisted")
		}
	})

	t.Run("get renders a value", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		out, err := cfg.Get("hash_algorithm")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(out) != "md5" {
			t.Errorf("expected md5, got %q", out)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGDataDir(), AppName) {
		t.Errorf("expected data dir to end with %q, got %q", AppName, XDGDataDir())
	}
	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("expected config dir to end with %q, got %q", AppName, XDGConfigDir())
	}
}
