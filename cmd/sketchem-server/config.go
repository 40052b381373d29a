package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/dvasquez/sketchem/internal/mol"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr         string
	DefaultSession string
	MoleculeFile string
	ConfigFile   string
	LogLevel     string
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment variables.
// Uses a resolver pattern to make it easy to add new configuration options.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	// Define all configuration resolvers
	// To add a new option, just add a new resolver here
	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "SKETCHEM_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "session-id",
			envVarName:  "SKETCHEM_SESSION_ID",
			defaultVal:  "default",
			description: "session ID created at startup",
			setter:      func(c *ServerConfig, v string) { c.DefaultSession = v },
		},
		{
			flagName:    "molecule-file",
			envVarName:  "SKETCHEM_MOLECULE_FILE",
			defaultVal:  "",
			description: "optional path to a JSON molecule document loaded into the startup session",
			setter:      func(c *ServerConfig, v string) { c.MoleculeFile = v },
		},
		{
			flagName:    "config-file",
			envVarName:  "SKETCHEM_CONFIG_FILE",
			defaultVal:  "",
			description: "optional path to a YAML config file (log level, webhook notifiers); watched for changes",
			setter:      func(c *ServerConfig, v string) { c.ConfigFile = v },
		},
		{
			flagName:    "log-level",
			envVarName:  "SKETCHEM_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	// Register string flags first
	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	// Parse flags once
	flag.Parse()

	// Resolve values for each resolver
	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}

// FileConfig is the YAML config file schema. It carries the settings that
// may change while the server is running.
type FileConfig struct {
	LogLevel string          `yaml:"logLevel"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig declares a webhook notifier to register at load time.
type WebhookConfig struct {
	ID      string            `yaml:"id"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// loadFileConfig reads and parses the YAML config file.
func loadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// loadInitialMoleculeFromFile loads a molecule document from a JSON file.
// Returns the document and the built molecule, or an error.
func loadInitialMoleculeFromFile(path string) (*mol.MoleculeDocument, *mol.Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	doc, err := mol.DecodeDocument(f)
	if err != nil {
		return nil, nil, err
	}

	m, err := mol.BuildMolecule(doc)
	if err != nil {
		return nil, nil, err
	}

	return doc, m, nil
}

// watchConfigFile watches the config file and calls apply on every rewrite.
// Editors that replace the file via rename trigger Create events, so both
// Write and Create re-apply.
func watchConfigFile(path string, logger *Logger, apply func(FileConfig)) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := loadFileConfig(path)
				if err != nil {
					logger.Warnf("Config reload failed: path=%s error=%v", path, err)
					continue
				}
				logger.Infof("Config reloaded: path=%s", path)
				apply(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("Config watcher error: %v", err)
			}
		}
	}()

	return watcher, nil
}
