package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gosuri/uiprogress"

	"github.com/chrissnell/maizsim/internal/app"
	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "maizsim.yaml", "Path to configuration source:\n\t\t\t  YAML: run.yaml\n\t\t\t  SQLite: runs.db\n\t\t\t  Legacy: run.dat (the run file naming the variety, initials and time files)\n\t\t\t  Use 'config-convert' tool to convert YAML or legacy files to SQLite")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml', 'sqlite' or 'legacy'")
	runName := flag.String("run", "", "Run to load from a SQLite database holding more than one")
	progress := flag.Bool("progress", false, "Show a progress bar")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("maizsim %s\n", version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	provider, err := newProvider(*cfgFile, *cfgBackend, *runName)
	if err != nil {
		log.Errorf("Failed to open configuration: %v", err)
		os.Exit(1)
	}
	defer provider.Close()

	// Create and run the application
	application := app.New(provider, log.GetSugaredLogger())
	stopProgress := func() {}
	if *progress {
		stopProgress = attachProgressBar(application)
	}
	err = application.Run(context.Background())
	stopProgress()
	if err != nil {
		log.Errorf("Simulation error: %v", err)
		os.Exit(1)
	}
}

func newProvider(cfgFile, cfgBackend, runName string) (config.ConfigProvider, error) {
	filename, _ := filepath.Abs(cfgFile)

	switch cfgBackend {
	case "yaml":
		return config.NewYAMLProvider(filename), nil
	case "sqlite":
		provider, err := config.NewSQLiteProvider(filename, runName)
		if err != nil {
			return nil, fmt.Errorf("error creating SQLite provider: %w", err)
		}
		return provider, nil
	case "legacy":
		return config.NewLegacyProvider(filename), nil
	}
	return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml', 'sqlite' or 'legacy'", cfgBackend)
}

// attachProgressBar draws one bar over the run's steps. The returned
// function stops the bar if it was ever started.
func attachProgressBar(a *app.App) func() {
	var bar *uiprogress.Bar
	a.OnStart = func(total int) {
		uiprogress.Start()
		bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("step %d/%d", b.Current(), total)
		})
	}
	a.OnStep = func(int) {
		bar.Incr()
	}
	return func() {
		if bar != nil {
			uiprogress.Stop()
		}
	}
}
