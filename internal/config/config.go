package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/weft/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "weft.json"

	// ConfigFileNameYAML is the YAML alternative, used when no weft.json
	// exists.
	ConfigFileNameYAML = "weft.yaml"

	// DefaultPort is the default dev server port.
	DefaultPort = 3000

	// DefaultHost is the default dev server host.
	DefaultHost = "localhost"

	// DefaultDispatchRate is the number of dev server dispatches accepted
	// per second.
	DefaultDispatchRate = 100

	// DefaultMaxFlattenDepth bounds child-list flattening.
	DefaultMaxFlattenDepth = 10

	// DefaultMaxAttributeBytes is the size above which a serialised
	// attribute value is reported.
	DefaultMaxAttributeBytes = 1 << 20

	// DefaultFrameInterval is the frame period of the event loop.
	DefaultFrameInterval = "16ms"

	// DefaultSnapshotDir is the directory used by the disk snapshot store.
	DefaultSnapshotDir = ".weft/snapshots"

	// DefaultMetricsNamespace prefixes all exported metrics.
	DefaultMetricsNamespace = "weft"
)

// Snapshot backends.
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Config represents the complete weft.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Dev contains dev server configuration.
	Dev DevConfig `json:"dev,omitempty" yaml:"dev,omitempty"`

	// Render contains reconciler and scheduler configuration.
	Render RenderConfig `json:"render,omitempty" yaml:"render,omitempty"`

	// Snapshot contains snapshot store configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains dev server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Debug enables development diagnostics (cache faults are logged).
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`

	// DispatchRate limits the events per second the dev server accepts.
	DispatchRate int `json:"dispatchRate,omitempty" yaml:"dispatchRate,omitempty"`
}

// RenderConfig contains reconciler settings.
type RenderConfig struct {
	// MaxFlattenDepth bounds the recursion when flattening child lists.
	MaxFlattenDepth int `json:"maxFlattenDepth,omitempty" yaml:"maxFlattenDepth,omitempty"`

	// MaxAttributeBytes is the serialised attribute size that triggers a warning.
	MaxAttributeBytes int `json:"maxAttributeBytes,omitempty" yaml:"maxAttributeBytes,omitempty"`

	// FrameInterval is the event loop frame period (e.g., "16ms").
	FrameInterval string `json:"frameInterval,omitempty" yaml:"frameInterval,omitempty"`
}

// SnapshotConfig selects and configures the snapshot store.
type SnapshotConfig struct {
	// Backend is "disk" or "s3".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Dir is the disk store directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (MinIO, localstack).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace prefixes all metric names.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Dev: DevConfig{
			Port:         DefaultPort,
			Host:         DefaultHost,
			DispatchRate: DefaultDispatchRate,
		},
		Render: RenderConfig{
			MaxFlattenDepth:   DefaultMaxFlattenDepth,
			MaxAttributeBytes: DefaultMaxAttributeBytes,
			FrameInterval:     DefaultFrameInterval,
		},
		Snapshot: SnapshotConfig{
			Backend: BackendDisk,
			Dir:     DefaultSnapshotDir,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for weft.json, then weft.yaml, in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(configFile(dir))
}

// configFile returns the config file in dir, preferring weft.json. When
// neither exists it returns the weft.json path.
func configFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameYAML} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(dir, ConfigFileName)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E041").
				WithDetail("No weft.json found in " + filepath.Dir(path)).
				WithSuggestion("Create weft.json or run without a config to use defaults")
		}
		return nil, errors.New("E040").Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			e := errors.New("E042").Wrap(err)
			if line := yamlLine(err); line > 0 {
				e = e.WithLocation(path, line, 0)
			}
			return nil, e.WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML")
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		e := errors.New("E042").Wrap(err)
		if se, ok := err.(*json.SyntaxError); ok {
			line, col := position(data, se.Offset)
			e = e.WithLocation(path, line, col)
		}
		return nil, e.WithSuggestion("Check that weft.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault loads weft.json from dir or its parents, returning the
// defaults when no file exists.
func LoadOrDefault(dir string) (*Config, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E040").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E040").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.DispatchRate == 0 {
		c.Dev.DispatchRate = DefaultDispatchRate
	}
	if c.Render.MaxFlattenDepth == 0 {
		c.Render.MaxFlattenDepth = DefaultMaxFlattenDepth
	}
	if c.Render.MaxAttributeBytes == 0 {
		c.Render.MaxAttributeBytes = DefaultMaxAttributeBytes
	}
	if c.Render.FrameInterval == "" {
		c.Render.FrameInterval = DefaultFrameInterval
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendDisk
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E040").
			WithDetail("dev.port must be between 0 and 65535")
	}
	if c.Dev.DispatchRate < 1 {
		return errors.New("E040").
			WithDetail("dev.dispatchRate must be positive")
	}
	if c.Render.MaxFlattenDepth < 1 {
		return errors.New("E040").
			WithDetail("render.maxFlattenDepth must be at least 1")
	}
	if c.Render.MaxAttributeBytes < 1 {
		return errors.New("E040").
			WithDetail("render.maxAttributeBytes must be positive")
	}
	if d, err := time.ParseDuration(c.Render.FrameInterval); err != nil || d <= 0 {
		return errors.New("E040").
			WithDetail("render.frameInterval must be a positive duration, got " + strconv.Quote(c.Render.FrameInterval))
	}
	switch c.Snapshot.Backend {
	case BackendDisk:
	case BackendS3:
		if c.Snapshot.Bucket == "" {
			return errors.New("E040").
				WithDetail("snapshot.bucket is required for the s3 backend")
		}
	default:
		return errors.New("E040").
			WithDetail("snapshot.backend must be \"disk\" or \"s3\", got " + strconv.Quote(c.Snapshot.Backend))
	}
	return nil
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// FrameDuration returns the parsed frame interval, falling back to the
// default when the value is invalid.
func (c *Config) FrameDuration() time.Duration {
	d, err := time.ParseDuration(c.Render.FrameInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultFrameInterval)
	}
	return d
}

// SnapshotPath returns the absolute path to the disk snapshot directory.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(configFile(dir))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing weft.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E041").
				WithDetail("No weft.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// yamlLine extracts the line from a yaml.v3 error ("yaml: line 3: ...").
func yamlLine(err error) int {
	var line int
	msg := err.Error()
	if i := strings.Index(msg, "line "); i >= 0 {
		fmt.Sscanf(msg[i:], "line %d", &line)
	}
	return line
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
