package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	RendererTerminal = "terminal"
	RendererStdout   = "stdout"
)

// Config holds the monitor settings
type Config struct {
	RefreshInterval time.Duration
	CPUSampleWindow time.Duration
	SensorGroups    []string
	NvidiaSMIPath   string
	CLITimeout      time.Duration
	Renderer        string
	LogLevel        string
	LogFile         string
	ShowVersion     bool
}

// Load reads the .env file (if any), the environment, then command line
// flags. Flags win over the environment.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("devmon", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "dotenv file to load before reading the environment")
	interval := flags.Duration("interval", 0, "delay between refreshes, measured from the end of the previous one")
	cpuWindow := flags.Duration("cpu-window", 0, "CPU usage sampling window")
	renderer := flags.String("renderer", "", "display surface: terminal or stdout")
	debug := flags.Bool("debug", false, "enable debug logging")
	version := flags.BoolP("version", "v", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// Missing .env is fine, plain environment still applies
	envLoaded := godotenv.Load(*envFile) == nil

	cfg := &Config{
		RefreshInterval: getEnvMillis("REFRESH_INTERVAL_MS", time.Second),
		CPUSampleWindow: getEnvMillis("CPU_SAMPLE_WINDOW_MS", time.Second),
		SensorGroups:    splitList(getEnv("CPU_SENSOR_GROUPS", "coretemp")),
		NvidiaSMIPath:   getEnv("NVIDIA_SMI_PATH", "nvidia-smi"),
		CLITimeout:      time.Duration(getEnvInt("CLI_TIMEOUT_SECONDS", 5)) * time.Second,
		Renderer:        strings.ToLower(getEnv("RENDERER", RendererTerminal)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", "devmon.log"),
		ShowVersion:     *version,
	}

	if flags.Changed("interval") {
		cfg.RefreshInterval = *interval
	}
	if flags.Changed("cpu-window") {
		cfg.CPUSampleWindow = *cpuWindow
	}
	if flags.Changed("renderer") {
		cfg.Renderer = strings.ToLower(*renderer)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if flags.Changed("env-file") && !envLoaded {
		return nil, fmt.Errorf("failed to load env file %s", *envFile)
	}

	return cfg, nil
}

// Validate checks values that would make the refresh loop misbehave.
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %v", c.RefreshInterval)
	}
	if c.CPUSampleWindow <= 0 {
		return fmt.Errorf("cpu sample window must be positive, got %v", c.CPUSampleWindow)
	}
	if c.CLITimeout <= 0 {
		return fmt.Errorf("cli timeout must be positive, got %v", c.CLITimeout)
	}
	switch c.Renderer {
	case RendererTerminal, RendererStdout:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	return nil
}

// getEnv returns the variable or fallback when unset or empty
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func getEnvMillis(key string, fallback time.Duration) time.Duration {
	ms := getEnvInt(key, 0)
	if ms == 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
