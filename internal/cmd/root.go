package cmd

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Kanompung1988/ASR-NANO/internal/config"
	"github.com/Kanompung1988/ASR-NANO/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`
	ServerURL   string           `help:"Coach backend base URL" default:""`
	DBPath      string           `help:"Path to the session database" default:""`

	Practice  PracticeCmd  `cmd:"" help:"Start a practice conversation (default)" default:"1"`
	Scenarios ScenariosCmd `cmd:"scenarios" help:"List available practice scenarios"`
	History   HistoryCmd   `cmd:"history" help:"Browse and manage past conversations"`
	Server    ServerCmd    `cmd:"server" help:"Serve the history browser over SSH"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// AfterApply initializes logging after CLI parsing and applies settings.
// Precedence: CLI flags > env vars > settings.json > defaults.
func (c *CLI) AfterApply() error {
	if c.settings != nil {
		if c.MaxLogFiles == 1000 {
			if _, hasEnv := os.LookupEnv("ASRNANO_MAX_LOG_FILES"); !hasEnv {
				if c.settings.MaxLogFiles != nil {
					c.MaxLogFiles = *c.settings.MaxLogFiles
				}
			}
		}

		if !c.Debug {
			if _, hasEnv := os.LookupEnv("ASRNANO_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}

		if c.ServerURL == "" {
			if env := os.Getenv("ASRNANO_SERVER_URL"); env != "" {
				c.ServerURL = env
			} else if c.settings.ServerURL != "" {
				c.ServerURL = c.settings.ServerURL
			}
		}

		if c.DBPath == "" && c.settings.DBPath != "" {
			c.DBPath = c.settings.DBPath
		}
	}
	if c.ServerURL == "" {
		c.ServerURL = config.DefaultServerURL
	}
	if c.DBPath == "" {
		c.DBPath = config.GetDBPath()
	}

	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Propagate debug settings so spawned capture processes and the SSH
	// server share the same log file
	if c.Debug || c.DebugFile != "" {
		os.Setenv("ASRNANO_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("ASRNANO_DEBUG_FILE", logFilePath)
		}
	}
	if c.MaxLogFiles != 1000 {
		os.Setenv("ASRNANO_MAX_LOG_FILES", fmt.Sprintf("%d", c.MaxLogFiles))
	}

	container, err := NewContainer(c.ServerURL, c.DBPath, c.recorderOverride())
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container

	return nil
}

// recorderOverride returns the configured capture command, if any
func (c *CLI) recorderOverride() string {
	if env := os.Getenv("ASRNANO_RECORDER"); env != "" {
		return env
	}
	if c.settings != nil {
		return c.settings.Recorder
	}
	return ""
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
