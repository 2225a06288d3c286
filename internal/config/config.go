package config

import (
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "dupman"

	// DefaultHashAlgorithm is the content hash used by the fingerprint index.
	// md5 is fast and sufficient for duplicate detection; switch to sha256
	// when the index is shared with tools that require a cryptographic digest.
	DefaultHashAlgorithm = "md5"

	// DefaultChunkSize is the read buffer used while streaming files through
	// the hasher. It bounds memory regardless of file size.
	DefaultChunkSize = 8192

	// DefaultImageSimilarityThreshold is the minimum perceptual similarity
	// (1 - hamming/64) for two images to be reported. 0.95 tolerates up to
	// three differing bits.
	DefaultImageSimilarityThreshold = 0.95

	// DefaultTextContainmentThreshold is the minimum containment score for
	// a text pair to be reported.
	DefaultTextContainmentThreshold = 0.8

	// DefaultIndexFile is the file name of the fingerprint index inside the
	// XDG data directory.
	DefaultIndexFile = "index.json"
)

// Supported hash algorithm names.
const (
	HashMD5     = "md5"
	HashSHA256  = "sha256"
	HashSHA3256 = "sha3-256"
)

// Config holds every option recognized by dupman.
// It is built once at startup (defaults merged with the config file and CLI
// flags) and handed to each component's constructor.
type Config struct {
	// HashAlgorithm selects the content hash: md5, sha256 or sha3-256.
	// An unknown name is rejected when the first file is hashed.
	HashAlgorithm string `yaml:"hash_algorithm"`

	// MinFileSize excludes files smaller than this many bytes.
	MinFileSize int64 `yaml:"min_file_size"`

	// MaxFileSize excludes files larger than this many bytes.
	// nil means no upper bound.
	MaxFileSize *int64 `yaml:"max_file_size"`

	// ExcludePatterns are matched as plain substrings of the file path.
	ExcludePatterns []string `yaml:"exclude_patterns"`

	// ExcludeExtensions are compared case-insensitively with the file extension.
	ExcludeExtensions []string `yaml:"exclude_extensions"`

	// ImageSimilarityThreshold is the inclusive lower bound for image pairs.
	ImageSimilarityThreshold float64 `yaml:"image_similarity_threshold"`

	// TextContainmentThreshold is the inclusive lower bound for text pairs.
	TextContainmentThreshold float64 `yaml:"text_containment_threshold"`

	// IndexPath is the location of the persisted fingerprint index.
	IndexPath string `yaml:"index_path"`

	// ChunkSize is the read buffer size used while hashing.
	ChunkSize int `yaml:"chunk_size"`

	// SupportedImageFormats lists extensions handed to the image matcher.
	SupportedImageFormats []string `yaml:"supported_image_formats"`

	// SupportedTextExtensions lists extensions handed to the text matcher.
	SupportedTextExtensions []string `yaml:"supported_text_extensions"`

	// TextEncodings is the ordered list of encodings tried when reading text.
	TextEncodings []string `yaml:"text_encodings"`

	// Workers bounds the number of files hashed or decoded concurrently.
	// Zero means runtime.NumCPU().
	Workers int `yaml:"workers"`

	// HistoryDir is where the scan history database lives.
	// Empty disables history recording.
	HistoryDir string `yaml:"history_dir"`

	// Verbose enables debug logging. Set from the CLI only.
	Verbose bool `yaml:"-"`

	// ConfigFilePath is the file this configuration was loaded from, if any.
	ConfigFilePath string `yaml:"-"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		HashAlgorithm:            DefaultHashAlgorithm,
		MinFileSize:              0,
		MaxFileSize:              nil,
		ExcludePatterns:          []string{".git", "__pycache__", "node_modules", ".venv", "venv"},
		ExcludeExtensions:        []string{".tmp", ".swp", ".DS_Store"},
		ImageSimilarityThreshold: DefaultImageSimilarityThreshold,
		TextContainmentThreshold: DefaultTextContainmentThreshold,
		IndexPath:                filepath.Join(XDGDataDir(), DefaultIndexFile),
		ChunkSize:                DefaultChunkSize,
		SupportedImageFormats:    []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp", ".tiff"},
		SupportedTextExtensions:  []string{".txt", ".py", ".js", ".html", ".css", ".md", ".json", ".xml", ".csv"},
		TextEncodings:            []string{"utf-8", "utf-16", "latin-1", "cp1251", "cp866"},
		Workers:                  0,
		HistoryDir:               XDGDataDir(),
	}
}

// WorkerCount returns the effective concurrency for per-file work.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// XDGDataDir returns the XDG data directory for dupman.
// On Linux: ~/.local/share/dupman
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for dupman.
// On Linux: ~/.config/dupman
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the numeric options and returns the first problem found.
// The hash algorithm is checked by the hasher when it is first used.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.MinFileSize < 0 {
		return ErrInvalidSizeBounds
	}
	if c.MaxFileSize != nil && *c.MaxFileSize < c.MinFileSize {
		return ErrInvalidSizeBounds
	}
	if c.ImageSimilarityThreshold < 0 || c.ImageSimilarityThreshold > 1 {
		return ErrInvalidImageThreshold
	}
	if c.TextContainmentThreshold < 0 || c.TextContainmentThreshold > 1 {
		return ErrInvalidTextThreshold
	}
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if c.IndexPath == "" {
		return ErrNoIndexPath
	}
	return nil
}
