package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the persisted YAML configuration.
type ConfigFile struct {
	SourceRoot string `yaml:"source_root"`
	DestRoot   string `yaml:"dest_root"`
	Move       bool   `yaml:"move"`
	DateFormat string `yaml:"date_format"`
	Extensions string `yaml:"extensions,omitempty"` // comma-separated override
	Workers    int    `yaml:"workers"`
}

func getConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mediasort.yaml"
	}
	return filepath.Join(home, ".mediasort.yaml")
}

func configExists() bool {
	_, err := os.Stat(getConfigPath())
	return err == nil
}

func loadConfig() (*ConfigFile, error) {
	data, err := os.ReadFile(getConfigPath())
	if err != nil {
		return nil, err
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveConfig(cfg *ConfigFile) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(getConfigPath(), data, 0644)
}

// getDefaultWorkers is half the CPUs, at least one, so a large run
// leaves the machine responsive.
func getDefaultWorkers() int {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return workers
}

// runSetupWizard interactively builds and saves a config file.
func runSetupWizard() (*ConfigFile, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Media Sorter - First Time Setup")
	fmt.Println("===============================")
	fmt.Println()
	fmt.Println("This configuration will be saved to:", getConfigPath())
	fmt.Println()

	cfg := &ConfigFile{DateFormat: defaultDateFormat}

	fmt.Println("1. Where are your unsorted photos and videos?")
	fmt.Print("   Source path: ")
	if line, err := reader.ReadString('\n'); err == nil {
		cfg.SourceRoot = strings.TrimSpace(line)
	}
	if cfg.SourceRoot == "" {
		fmt.Println("\nSetup cancelled.")
		return nil, fmt.Errorf("source path is required")
	}

	defaultDest := filepath.Join(cfg.SourceRoot, "organized")
	fmt.Println("2. Where should the organized library be created?")
	fmt.Printf("   Path [%s]: ", defaultDest)
	cfg.DestRoot = defaultDest
	if line, err := reader.ReadString('\n'); err == nil {
		if v := strings.TrimSpace(line); v != "" {
			cfg.DestRoot = v
		}
	}

	fmt.Println("3. Move files instead of copying them?")
	fmt.Print("   Move? [y/N]: ")
	if line, err := reader.ReadString('\n'); err == nil {
		v := strings.ToLower(strings.TrimSpace(line))
		cfg.Move = v == "y" || v == "yes"
	}

	fmt.Println("4. How many parallel workers?")
	fmt.Printf("   (Your system has %d CPUs, recommend %d for responsiveness)\n",
		runtime.NumCPU(), getDefaultWorkers())
	fmt.Printf("   Workers [%d]: ", getDefaultWorkers())
	cfg.Workers = getDefaultWorkers()
	if line, err := reader.ReadString('\n'); err == nil {
		if v := strings.TrimSpace(line); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				cfg.Workers = n
			}
		}
	}

	fmt.Println()
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Source:      %s\n", cfg.SourceRoot)
	fmt.Printf("  Destination: %s\n", cfg.DestRoot)
	fmt.Printf("  Mode:        %s\n", map[bool]string{true: "move", false: "copy"}[cfg.Move])
	fmt.Printf("  Workers:     %d\n", cfg.Workers)
	fmt.Println()
	fmt.Print("Save this configuration? [Y/n]: ")
	if line, err := reader.ReadString('\n'); err == nil {
		v := strings.ToLower(strings.TrimSpace(line))
		if v == "n" || v == "no" {
			fmt.Println("\nSetup cancelled.")
			return nil, fmt.Errorf("setup cancelled")
		}
	}

	if err := saveConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println("✓ Configuration saved to:", getConfigPath())
	fmt.Println("You can edit this file manually or run with -reconfigure to change settings.")
	fmt.Println()

	return cfg, nil
}
