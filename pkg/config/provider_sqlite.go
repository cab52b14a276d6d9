package config

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/maizsim/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the schema migrations of a run database.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// SQLiteProvider implements ConfigProvider for a SQLite database holding
// any number of named runs, varieties and initials.
type SQLiteProvider struct {
	db      *sql.DB
	dbPath  string
	runName string
}

// NewSQLiteProvider opens the database, bringing its schema up to date.
// runName selects the run LoadConfig returns; it may be empty when the
// database holds a single run.
func NewSQLiteProvider(dbPath, runName string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := migrate.NewMigrator(db, migrate.NewFSProvider(Migrations(), ""), nil).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:      db,
		dbPath:  dbPath,
		runName: runName,
	}, nil
}

// LoadConfig loads the selected run with its variety and initials.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	name := s.runName
	if name == "" {
		runs, err := s.ListRuns()
		if err != nil {
			return nil, err
		}
		if len(runs) != 1 {
			return nil, fmt.Errorf("database holds %d runs; choose one by name", len(runs))
		}
		name = runs[0]
	}

	config := &ConfigData{}
	var varietyName, initialsName string
	if err := s.loadRun(name, &config.Run, &config.Parameters, &varietyName, &initialsName); err != nil {
		return nil, fmt.Errorf("failed to load run %q: %w", name, err)
	}
	if err := s.loadVariety(varietyName, &config.Variety); err != nil {
		return nil, fmt.Errorf("failed to load variety %q: %w", varietyName, err)
	}
	if err := s.loadInitials(initialsName, &config.Initials); err != nil {
		return nil, fmt.Errorf("failed to load initials %q: %w", initialsName, err)
	}
	return config, nil
}

// ListRuns returns the run names in alphabetical order.
func (s *SQLiteProvider) ListRuns() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM runs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteProvider) loadRun(name string, run *RunData, params *ParametersData, variety, initials *string) error {
	query := `
		SELECT name, variety, initials, weather_source, weather_file, co2,
		       output_format, crop_file, leaf_file, report_database,
		       daily_output, hourly_output,
		       server_enabled, server_listen_addr, server_port,
		       synthetic, soil, parameters
		FROM runs
		WHERE name = ?
	`
	var (
		weatherFile, cropFile, leafFile, database, listenAddr sql.NullString
		port                                                  sql.NullInt64
		synthetic, soil, parameters                           string
	)
	err := s.db.QueryRow(query, name).Scan(
		&run.Name, variety, initials, &run.Weather.Source, &weatherFile, &run.Weather.CO2,
		&run.Output.Format, &cropFile, &leafFile, &database,
		&run.Output.Daily, &run.Output.Hourly,
		&run.Server.Enabled, &listenAddr, &port,
		&synthetic, &soil, &parameters,
	)
	if err != nil {
		return err
	}

	// Convert nullable fields to zero values if NULL
	run.Weather.File = weatherFile.String
	run.Output.CropFile = cropFile.String
	run.Output.LeafFile = leafFile.String
	run.Output.Database = database.String
	run.Server.ListenAddr = listenAddr.String
	run.Server.Port = int(port.Int64)

	if err := json.Unmarshal([]byte(synthetic), &run.Weather.Synthetic); err != nil {
		return fmt.Errorf("synthetic weather settings: %w", err)
	}
	if err := json.Unmarshal([]byte(soil), &run.Soil); err != nil {
		return fmt.Errorf("soil settings: %w", err)
	}
	if err := json.Unmarshal([]byte(parameters), params); err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	return nil
}

func (s *SQLiteProvider) loadVariety(name string, v *VarietyData) error {
	query := `
		SELECT name, description, cultivar, gdd_rating, generic_leaf_number,
		       day_length_sensitive, rmax_ltar, rmax_lir, phyllochrons_to_silk
		FROM varieties
		WHERE name = ?
	`
	return s.db.QueryRow(query, name).Scan(
		&v.Name, &v.Description, &v.Cultivar, &v.GDDRating, &v.GenericLeafNumber,
		&v.DayLengthSensitive, &v.RMaxLTAR, &v.RMaxLIR, &v.PhyllochronsToSilk,
	)
}

func (s *SQLiteProvider) loadInitials(name string, in *InitialsData) error {
	query := `
		SELECT name, population_per_row, row_spacing, plant_density, row_angle,
		       canopy_extinction, latitude, longitude, altitude, timezone,
		       auto_irrigate, begin_date, sowing_date, end_date, timestep_minutes
		FROM initials
		WHERE name = ?
	`
	var begin, sowing, end string
	err := s.db.QueryRow(query, name).Scan(
		&in.Name, &in.PopulationPerRow, &in.RowSpacing, &in.PlantDensity, &in.RowAngle,
		&in.CanopyExtinction, &in.Latitude, &in.Longitude, &in.Altitude, &in.Timezone,
		&in.AutoIrrigate, &begin, &sowing, &end, &in.TimestepMinutes,
	)
	if err != nil {
		return err
	}

	for _, d := range []struct {
		s   string
		dst *Date
	}{{begin, &in.BeginDate}, {sowing, &in.SowingDate}, {end, &in.EndDate}} {
		if *d.dst, err = ParseDate(d.s); err != nil {
			return fmt.Errorf("invalid date %q: %w", d.s, err)
		}
	}
	return nil
}

// SaveConfig stores the run, replacing any run, variety or initials of the
// same names. Unnamed sections are named after the run.
func (s *SQLiteProvider) SaveConfig(config *ConfigData) error {
	if config.Run.Name == "" {
		return fmt.Errorf("run name is required")
	}
	if config.Variety.Name == "" {
		config.Variety.Name = config.Run.Name
	}
	if config.Initials.Name == "" {
		config.Initials.Name = config.Run.Name
	}

	// Start transaction
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	v := config.Variety
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO varieties (
			name, description, cultivar, gdd_rating, generic_leaf_number,
			day_length_sensitive, rmax_ltar, rmax_lir, phyllochrons_to_silk
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Name, v.Description, v.Cultivar, v.GDDRating, v.GenericLeafNumber,
		v.DayLengthSensitive, v.RMaxLTAR, v.RMaxLIR, v.PhyllochronsToSilk,
	)
	if err != nil {
		return fmt.Errorf("failed to insert variety %s: %w", v.Name, err)
	}

	in := config.Initials
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO initials (
			name, population_per_row, row_spacing, plant_density, row_angle,
			canopy_extinction, latitude, longitude, altitude, timezone,
			auto_irrigate, begin_date, sowing_date, end_date, timestep_minutes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.PopulationPerRow, in.RowSpacing, in.PlantDensity, in.RowAngle,
		in.CanopyExtinction, in.Latitude, in.Longitude, in.Altitude, in.Timezone,
		in.AutoIrrigate, in.BeginDate.String(), in.SowingDate.String(), in.EndDate.String(), in.TimestepMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert initials %s: %w", in.Name, err)
	}

	synthetic, err := json.Marshal(config.Run.Weather.Synthetic)
	if err != nil {
		return err
	}
	soil, err := json.Marshal(config.Run.Soil)
	if err != nil {
		return err
	}
	parameters, err := json.Marshal(config.Parameters)
	if err != nil {
		return err
	}

	r := config.Run
	_, err = tx.Exec(`
		INSERT OR REPLACE INTO runs (
			name, variety, initials, weather_source, weather_file, co2,
			output_format, crop_file, leaf_file, report_database,
			daily_output, hourly_output,
			server_enabled, server_listen_addr, server_port,
			synthetic, soil, parameters, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		r.Name, v.Name, in.Name, r.Weather.Source, nullString(r.Weather.File), r.Weather.CO2,
		r.Output.Format, nullString(r.Output.CropFile), nullString(r.Output.LeafFile), nullString(r.Output.Database),
		r.Output.Daily, r.Output.Hourly,
		r.Server.Enabled, nullString(r.Server.ListenAddr), r.Server.Port,
		string(synthetic), string(soil), string(parameters),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", r.Name, err)
	}

	// Commit transaction
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// IsReadOnly returns false; runs can be saved.
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
