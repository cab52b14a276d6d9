package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/maizsim/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML run configuration")
		legacyFile = flag.String("legacy", "", "Path to a legacy run file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		runName    = flag.String("name", "", "Store the run under this name (default: the run's own name)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if (*yamlFile == "") == (*legacyFile == "") || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s (-yaml <run.yaml> | -legacy <run.dat>) -sqlite <runs.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	source, provider := *yamlFile, config.ConfigProvider(nil)
	if source != "" {
		provider = config.NewYAMLProvider(source)
	} else {
		source = *legacyFile
		provider = config.NewLegacyProvider(source)
	}

	// Check if source file exists
	if _, err := os.Stat(source); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: source file does not exist: %s\n", source)
		os.Exit(1)
	}

	// Check if SQLite file already exists. Without -force, runs are added
	// to it.
	if _, err := os.Stat(*sqliteFile); err == nil && *force && !*dryRun {
		if err := os.Remove(*sqliteFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Converting run configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", source)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	configData, err := provider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *runName != "" {
		configData.Run.Name = *runName
	}
	configData.ApplyDefaults()
	if err := configData.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	printConfigSummary(configData)
	if *dryRun {
		fmt.Println("DRY RUN complete - no database written")
		return
	}

	if err := saveToSQLite(*sqliteFile, configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s -run %s\n", *sqliteFile, configData.Run.Name)
}

func saveToSQLite(dbPath string, configData *config.ConfigData) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// The provider applies the schema migrations on open
	provider, err := config.NewSQLiteProvider(dbPath, configData.Run.Name)
	if err != nil {
		return fmt.Errorf("failed to create SQLite provider: %w", err)
	}
	defer provider.Close()

	if err := provider.SaveConfig(configData); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	runs, err := provider.ListRuns()
	if err != nil {
		return err
	}
	fmt.Printf("  Database now holds %d run(s)\n", len(runs))
	return nil
}

func printConfigSummary(c *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("Run: %s\n", c.Run.Name)
	fmt.Printf("  Variety: %s (%.0f GDD, %d leaves)\n", c.Variety.Name, c.Variety.GDDRating, c.Variety.GenericLeafNumber)
	fmt.Printf("  Site: %.2f, %.2f at %.0f m\n", c.Initials.Latitude, c.Initials.Longitude, c.Initials.Altitude)
	fmt.Printf("  Season: %s to %s, sown %s, %d min steps\n",
		c.Initials.BeginDate, c.Initials.EndDate, c.Initials.SowingDate, c.Initials.TimestepMinutes)
	fmt.Printf("  Weather: %s %s\n", c.Run.Weather.Source, c.Run.Weather.File)
	fmt.Printf("  Output: %s\n", c.Run.Output.Format)
}
