package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
)

func main() {
	var (
		srcFlag        = flag.String("src", "", "Source directory to scan for photos and videos")
		destFlag       = flag.String("dest", "", "Destination directory for the organized library")
		moveFlag       = flag.Bool("move", false, "Move files instead of copying them")
		dateFormatFlag = flag.String("date-format", "", "strftime template for destination directories (default \"%Y/%m/%d\")")
		extensionsFlag = flag.String("extensions", "", "Comma-separated extension allowlist (default: all supported media)")
		workersFlag    = flag.Int("workers", 0, "Number of parallel workers (default: half the CPUs)")
		failFast       = flag.Bool("fail-fast", false, "Abort the run on the first per-file failure")
		dryRun         = flag.Bool("dry-run", false, "Plan everything, transfer nothing")
		noTUI          = flag.Bool("no-tui", false, "Disable TUI, use plain CLI output")
		noCache        = flag.Bool("no-cache", false, "Disable the extraction cache")
		statsFlag      = flag.Bool("stats", false, "Report collection statistics for -src and exit")
		reconfigure    = flag.Bool("reconfigure", false, "Re-run the setup wizard")
	)
	flag.Parse()

	// A bool flag's zero value is indistinguishable from unset, and
	// -move=false must be able to override a config file.
	moveSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "move" {
			moveSet = true
		}
	})

	config, err := buildConfig(*srcFlag, *destFlag, *moveFlag, moveSet, *dateFormatFlag,
		*extensionsFlag, *workersFlag, *failFast, *dryRun, *noCache, *reconfigure)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *statsFlag {
		stats, err := CollectStatistics(config.SourceRoot, config.Extensions)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		PrintStatistics(config.SourceRoot, stats)
		return
	}

	if err := ValidateConfig(config); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *noTUI {
		runCLI(config)
	} else {
		runTUI(config)
	}
}

// buildConfig layers flags over the YAML config file, running the
// setup wizard when neither supplies the roots. An explicitly set
// -move flag wins over the file in either direction.
func buildConfig(src, dest string, move, moveSet bool, dateFormat, extensions string,
	workers int, failFast, dryRun, noCache, reconfigure bool) (*Config, error) {

	var file *ConfigFile
	if reconfigure || (!configExists() && (src == "" || dest == "")) {
		var err error
		if file, err = runSetupWizard(); err != nil {
			return nil, err
		}
	} else if configExists() {
		var err error
		if file, err = loadConfig(); err != nil {
			return nil, fmt.Errorf("load config %s: %w", getConfigPath(), err)
		}
	}

	config := &Config{
		SourceRoot: src,
		DestRoot:   dest,
		Move:       move,
		DateFormat: dateFormat,
		FailFast:   failFast,
		Workers:    workers,
		DryRun:     dryRun,
		NoCache:    noCache,
		Extensions: DefaultExtensions(),
	}
	if extensions != "" {
		config.Extensions = ParseExtensions(extensions)
	}

	if file != nil {
		if config.SourceRoot == "" {
			config.SourceRoot = file.SourceRoot
		}
		if config.DestRoot == "" {
			config.DestRoot = file.DestRoot
		}
		if config.DateFormat == "" {
			config.DateFormat = file.DateFormat
		}
		if !moveSet {
			config.Move = file.Move
		}
		if config.Workers == 0 {
			config.Workers = file.Workers
		}
		if extensions == "" && file.Extensions != "" {
			config.Extensions = ParseExtensions(file.Extensions)
		}
	}
	if config.DateFormat == "" {
		config.DateFormat = defaultDateFormat
	}
	if config.Workers == 0 {
		config.Workers = getDefaultWorkers()
	}
	if config.SourceRoot == "" || config.DestRoot == "" {
		return nil, fmt.Errorf("source and destination directories are required (use -src and -dest)")
	}
	return config, nil
}

func runCLI(config *Config) {
	fmt.Println("Media Sorter")
	fmt.Println("============")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Source:       %s\n", config.SourceRoot)
	fmt.Printf("  Destination:  %s\n", config.DestRoot)
	fmt.Printf("  Mode:         %s\n", map[bool]string{true: "move", false: "copy"}[config.Move])
	fmt.Printf("  Date format:  %s\n", config.DateFormat)
	fmt.Printf("  Workers:      %d\n", config.Workers)
	if config.DryRun {
		fmt.Println("\nMode: DRY RUN (no changes will be made)")
	}
	fmt.Println()

	cache := openCacheIfEnabled(config)
	if cache != nil {
		defer cache.Close()
		fmt.Printf("Cache: %d cached timestamps\n\n", cache.Count())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := NewEngine(config, cache)

	progressChan := make(chan ScanProgress, 100)
	done := make(chan struct{})
	var bar *progressbar.ProgressBar
	go func() {
		defer close(done)
		last := 0
		for prog := range progressChan {
			if bar == nil && prog.TotalFiles > 0 {
				bar = progressbar.NewOptions(prog.TotalFiles,
					progressbar.OptionSetDescription("organizing"),
					progressbar.OptionSetWidth(20),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			if bar != nil && prog.ProcessedFiles > last {
				bar.Add(prog.ProcessedFiles - last)
				last = prog.ProcessedFiles
			}
		}
		if bar != nil {
			bar.Finish()
		}
	}()

	var (
		failMu   sync.Mutex
		failures []FileRecord
	)
	recordFn := func(rec FileRecord) {
		if rec.State == StateFailed {
			failMu.Lock()
			failures = append(failures, rec)
			failMu.Unlock()
		}
	}

	stats, err := engine.Run(ctx, progressChan, recordFn)
	close(progressChan)
	<-done

	for _, rec := range failures {
		fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", rec.Source, rec.Err)
	}

	printSummary(config, stats)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run aborted: %v\n", err)
		os.Exit(1)
	}
}

func printSummary(config *Config, stats RunStats) {
	verb := "organized"
	if config.DryRun {
		verb = "planned"
	}
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Processed:          %d\n", stats.Processed)
	fmt.Printf("  %-19s %d\n", verb+":", stats.Organized)
	fmt.Printf("  Duplicates skipped: %d\n", stats.Duplicates)
	if stats.AlreadyOrganized > 0 {
		fmt.Printf("  Already organized:  %d\n", stats.AlreadyOrganized)
	}
	if stats.Renamed > 0 {
		fmt.Printf("  Renamed:            %d\n", stats.Renamed)
	}
	fmt.Printf("  Errors:             %d\n", stats.Errors)
}

// openCacheIfEnabled opens the extraction cache, downgrading failures
// to a warning. Dry runs skip the cache so they stay side-effect free.
func openCacheIfEnabled(config *Config) *Cache {
	if config.NoCache || config.DryRun {
		return nil
	}
	cache, err := OpenCache(config.DestRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cache disabled: %v\n", err)
		return nil
	}
	return cache
}

func runTUI(config *Config) {
	p := tea.NewProgram(initialModel(config), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
