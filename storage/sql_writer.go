package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aoe2-units/models"
	"aoe2-units/utils"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// columns in insert order: the schema fields, the derived key, then the wiki data
var unitColumns = append(models.SchemaNames(), "key", "wiki_url", "strong_against", "weak_against")

// SQLWriter stores the final units in PostgreSQL or SQLite
type SQLWriter struct {
	db     *sql.DB
	driver string
	logger *utils.Logger
}

// NewSQLWriter opens the database and pings it
func NewSQLWriter(driver, dsn string, logger *utils.Logger) (*SQLWriter, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	if driver == DriverSQLite {
		// one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Minute * 5)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to %s successfully", driver)
	return &SQLWriter{db: db, driver: driver, logger: logger}, nil
}

// CreateTable creates the units table if it doesn't exist, with indexes
func (w *SQLWriter) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS units (
		"key"             TEXT PRIMARY KEY,
		"name"            TEXT NOT NULL,
		"type1"           TEXT,
		"type2"           TEXT,
		"building"        TEXT,
		"age"             TEXT,
		"food"            INTEGER,
		"wood"            INTEGER,
		"gold"            INTEGER,
		"total_cost"      INTEGER,
		"build_time"      DOUBLE PRECISION,
		"attack_speed"    DOUBLE PRECISION,
		"delay"           DOUBLE PRECISION,
		"movement_speed"  DOUBLE PRECISION,
		"line_of_sight"   INTEGER,
		"hp"              INTEGER,
		"range_min"       DOUBLE PRECISION,
		"range"           DOUBLE PRECISION,
		"damage"          INTEGER,
		"accuracy"        DOUBLE PRECISION,
		"armor_melee"     INTEGER,
		"armor_pierce"    INTEGER,
		"wiki_url"        TEXT,
		"strong_against"  TEXT,
		"weak_against"    TEXT,
		"updated_at"      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_units_building ON units ("building");
	CREATE INDEX IF NOT EXISTS idx_units_age      ON units ("age");
	`
	for _, stmt := range strings.Split(query, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := w.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	w.logger.Info("Table 'units' is ready")
	return nil
}

// SaveUnits implements UnitSink
func (w *SQLWriter) SaveUnits(units []*models.Unit) error {
	if err := w.CreateTable(); err != nil {
		return err
	}
	return w.Upsert(units)
}

// Upsert writes all units in a single transaction, replacing rows with the same key
func (w *SQLWriter) Upsert(units []*models.Unit) (err error) {
	if len(units) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(w.upsertQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, u := range units {
		args, err := unitArgs(u)
		if err != nil {
			return err
		}
		if _, err = stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to upsert %q: %w", u.Key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.logger.Info("Upserted %d units into %s", len(units), w.driver)
	return nil
}

func (w *SQLWriter) upsertQuery() string {
	placeholders := make([]string, len(unitColumns))
	updates := make([]string, 0, len(unitColumns))
	for i, col := range unitColumns {
		if w.driver == DriverPostgres {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
		if col != "key" {
			updates = append(updates, fmt.Sprintf("%q = excluded.%q", col, col))
		}
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")

	quoted := make([]string, len(unitColumns))
	for i, col := range unitColumns {
		quoted[i] = fmt.Sprintf("%q", col)
	}

	return fmt.Sprintf(
		`INSERT INTO units (%s) VALUES (%s) ON CONFLICT ("key") DO UPDATE SET %s`,
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}

func unitArgs(u *models.Unit) ([]any, error) {
	strong, err := labelsColumn(u.StrongAgainst)
	if err != nil {
		return nil, err
	}
	weak, err := labelsColumn(u.WeakAgainst)
	if err != nil {
		return nil, err
	}
	return []any{
		u.Name, u.Type1, u.Type2, u.Building, u.Age,
		u.Food, u.Wood, u.Gold, u.TotalCost,
		u.BuildTime, u.AttackSpeed, u.Delay, u.MovementSpeed,
		u.LineOfSight, u.HP, u.RangeMin, u.Range, u.Damage,
		u.Accuracy, u.ArmorMelee, u.ArmorPierce,
		u.Key, u.WikiURL, strong, weak,
	}, nil
}

// labelsColumn stores labels as a JSON array, or NULL when never fetched
func labelsColumn(l models.Labels) (sql.NullString, error) {
	if l.State() == models.LabelsUnset {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// Close closes the database connection
func (w *SQLWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}
