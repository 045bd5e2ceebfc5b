package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file consulted when no --config flag is given.
const DefaultFile = "inky-deploy.yaml"

// Config holds the deployment settings, layered from built-in defaults,
// an optional YAML file, and environment variables (including a .env file).
type Config struct {
	// Host is the SSH destination for the target device, either a
	// user@host pair or an alias from ~/.ssh/config.
	Host string `yaml:"host"`
	// CrossTool is the cross-compilation command invoked for builds.
	CrossTool string `yaml:"cross_tool"`
	// Target is the cross-compilation triple.
	Target string `yaml:"target"`
	// Binary is the name of the built artifact.
	Binary string `yaml:"binary"`
	// DeployDir is the staging directory recreated on every deploy; the
	// same name is used for the copy under the remote home directory.
	DeployDir string `yaml:"deploy_dir"`
	// TargetDir is the cross tool's local build output directory.
	TargetDir string `yaml:"target_dir"`
	// GDBPort is the port the remote gdbserver binds to.
	GDBPort int `yaml:"gdb_port"`
}

func defaults() *Config {
	return &Config{
		Host:      "inky-gotchi",
		CrossTool: "cross",
		Target:    "arm-unknown-linux-gnueabi",
		Binary:    "inky-gotchi",
		DeployDir: "inky-gotchi-deploy",
		TargetDir: "target",
		GDBPort:   1234,
	}
}

// Load builds the configuration. A non-empty path names a config file that
// must exist; otherwise DefaultFile is read if present. Environment
// variables override file values, and a .env file (ENV_FILE, default .env)
// is loaded into the environment first if it exists.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if v := os.Getenv("INKY_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("INKY_CROSS_TOOL"); v != "" {
		cfg.CrossTool = v
	}
	if v := os.Getenv("INKY_TARGET"); v != "" {
		cfg.Target = v
	}
	if v := os.Getenv("INKY_BINARY"); v != "" {
		cfg.Binary = v
	}
	if v := os.Getenv("INKY_DEPLOY_DIR"); v != "" {
		cfg.DeployDir = v
	}
	if v := os.Getenv("INKY_TARGET_DIR"); v != "" {
		cfg.TargetDir = v
	}
	if v := os.Getenv("INKY_GDB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid INKY_GDB_PORT %q: %w", v, err)
		}
		cfg.GDBPort = port
	}

	if cfg.GDBPort <= 0 || cfg.GDBPort > 65535 {
		return nil, fmt.Errorf("gdb port %d out of range", cfg.GDBPort)
	}

	return cfg, nil
}
