package models

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

/*
Schema tooling, driven by environment flags in main.go:

  MIGRATE=true                 create/alter tables and exit
  GENERATE_MODELS=true         migrate, print the drift report, then write
                               typed query helpers to ./generated
  GENERATE_COLUMN_REPORT=true  only print the drift report

The drift report lists database columns that no model field maps to:

=== COLUMN MISMATCH REPORT ===
--- Table: posts ---
Found 1 columns not accounted for in model:
  - legacy_slug
*/

// All returns every persisted model in foreign-key dependency order
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Location{},
		&Post{},
	}
}

func verboseSession(db *gorm.DB) *gorm.DB {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	return db.Session(&gorm.Session{
		Logger:                 newLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
}

// Migrate creates or updates the tables for all models
func Migrate(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not reachable: %w", err)
	}

	fmt.Println("Migrating models...")
	if err := verboseSession(db).AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	fmt.Println("Database migration completed successfully!")
	return nil
}

// GenerateModels migrates the schema and generates typed query helpers
func GenerateModels(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(verboseSession(db))
	g.ApplyBasic(User{}, Category{}, Location{}, Post{})

	if _, err := GenerateColumnMismatchReport(db); err != nil {
		return err
	}

	g.Execute()
	fmt.Println("Model generation complete!")
	return nil
}

// GenerateColumnMismatchReport prints, per table, the database columns
// that no model field maps to and returns the total count
func GenerateColumnMismatchReport(db *gorm.DB) (int, error) {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")

	cache := &sync.Map{}
	totalMismatches := 0

	for _, model := range All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return totalMismatches, fmt.Errorf("parse model %T: %w", model, err)
		}
		fmt.Printf("\n--- Table: %s ---\n", s.Table)

		dbColumns, err := getTableColumns(db, s.Table)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") {
				fmt.Println("Table does not exist yet (will be created during migration)")
				continue
			}
			return totalMismatches, err
		}

		mismatches := findColumnMismatches(dbColumns, modelColumns(s))
		if len(mismatches) == 0 {
			fmt.Println("All columns are accounted for in the model.")
			continue
		}
		fmt.Printf("Found %d columns not accounted for in model:\n", len(mismatches))
		for _, col := range mismatches {
			fmt.Printf("  - %s\n", col)
		}
		totalMismatches += len(mismatches)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", totalMismatches)
	return totalMismatches, nil
}

// modelColumns lists the column names gorm maps for a parsed model.
// Relationship fields have no DBName and are skipped.
func modelColumns(s *schema.Schema) []string {
	columns := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		if field.DBName != "" {
			columns = append(columns, field.DBName)
		}
	}
	sort.Strings(columns)
	return columns
}

func getTableColumns(db *gorm.DB, tableName string) ([]string, error) {
	var columns []string
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = ?
		AND table_schema = CURRENT_SCHEMA()
		ORDER BY ordinal_position
	`
	if err := db.Raw(query, tableName).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}

	if len(columns) == 0 {
		if !db.Migrator().HasTable(tableName) {
			return nil, fmt.Errorf("table %s does not exist", tableName)
		}
	}
	return columns, nil
}

// findColumnMismatches returns the database columns missing from modelFields
func findColumnMismatches(dbColumns, modelFields []string) []string {
	known := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		known[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !known[col] {
			mismatches = append(mismatches, col)
		}
	}
	return mismatches
}
