package output

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS crop_reports (
	run_id TEXT NOT NULL,
	time TEXT NOT NULL,
	jday INTEGER NOT NULL,
	hour INTEGER NOT NULL,
	leaves INTEGER,
	dropped_leaves INTEGER,
	green_area REAL,
	senescent_area REAL,
	lai REAL,
	rh REAL,
	leaf_wp REAL,
	pfd REAL,
	solar_radiation REAL,
	t_soil REAL,
	t_air REAL,
	t_canopy REAL,
	et_demand REAL,
	et_supply REAL,
	pn REAL,
	pg REAL,
	respiration REAL,
	av_gs REAL,
	vpd REAL,
	nitrogen REAL,
	n_demand REAL,
	n_uptake REAL,
	leaf_n REAL,
	pcrl REAL,
	total_dm REAL,
	shoot_dm REAL,
	ear_dm REAL,
	leaf_dm REAL,
	dropped_leaf_dm REAL,
	stem_dm REAL,
	root_dm REAL,
	soil_root REAL,
	max_root_depth REAL,
	available_water REAL,
	soluble_c REAL,
	stage TEXT,
	PRIMARY KEY (run_id, time)
);

CREATE TABLE IF NOT EXISTS leaf_reports (
	run_id TEXT NOT NULL,
	time TEXT NOT NULL,
	jday INTEGER NOT NULL,
	hour INTEGER NOT NULL,
	leaves_initiated INTEGER,
	leaves_appeared INTEGER,
	rank INTEGER NOT NULL,
	area REAL,
	mass REAL,
	senescent_area REAL,
	potential_area REAL,
	longevity REAL,
	nitrogen REAL,
	sla REAL,
	dropped INTEGER,
	growing INTEGER,
	gdd_sum REAL,
	PRIMARY KEY (run_id, time, rank)
);
`

const insertCrop = `INSERT INTO crop_reports VALUES (
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertLeaf = `INSERT INTO leaf_reports VALUES (
	?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?)`

// SQLiteSink stores both reports in one SQLite database. Records of several
// runs can share a file; they are told apart by run_id.
type SQLiteSink struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteSink opens or creates the database and its tables.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create report tables: %w", err)
	}
	return &SQLiteSink{db: db, dbPath: dbPath}, nil
}

func sqlTime(t time.Time) string { return t.Format(time.RFC3339) }

func (s *SQLiteSink) WriteCrop(r CropRecord) error {
	_, err := s.db.Exec(insertCrop,
		r.RunID, sqlTime(r.Time), r.JulianDay, r.Hour,
		r.Leaves, r.DroppedLeaves, r.GreenArea, r.SenescentArea, r.LAI,
		r.RH, r.LeafWP, r.PFD, r.SolarRadiation, r.TSoil, r.TAir, r.TCanopy,
		r.ETDemand, r.ETSupply, r.NetPhotosynth, r.GrossPhotosynth,
		r.Respiration, r.Conductance, r.VPD,
		r.Nitrogen, r.NitrogenDemand, r.NitrogenUptake, r.LeafNitrogen, r.RootCarbon,
		r.TotalMass, r.ShootMass, r.EarMass, r.LeafMass, r.DroppedLeafMass,
		r.StemMass, r.RootMass,
		r.SoilRoot, r.MaxRootDepth, r.AvailableWater, r.SolubleCarbon, r.Stage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert crop record: %w", err)
	}
	return nil
}

// WriteLeaves inserts one step's leaves in a single transaction.
func (s *SQLiteSink) WriteLeaves(rs []LeafRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertLeaf)
	if err != nil {
		return fmt.Errorf("failed to prepare leaf insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs {
		_, err := stmt.Exec(
			r.RunID, sqlTime(r.Time), r.JulianDay, r.Hour,
			r.LeavesInitiated, r.LeavesAppeared, r.Rank,
			r.GreenArea, r.Mass, r.SenescentArea, r.PotentialArea,
			r.Longevity, r.Nitrogen, r.SLA, r.Dropped, r.Growing, r.GDDSum,
		)
		if err != nil {
			return fmt.Errorf("failed to insert leaf %d: %w", r.Rank, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
