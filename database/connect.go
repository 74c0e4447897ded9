package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/blogicum/config"
)

// DSN builds the primary connection string from DB_TYPE and its settings.
// DATABASE_URL, when set, is used as is.
func DSN(c map[string]string) (string, error) {
	if url := config.GetString(c, "DATABASE_URL", ""); url != "" {
		return url, nil
	}

	switch dbType := config.GetString(c, "DB_TYPE", "postgres"); dbType {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			config.GetString(c, "DB_HOST", "localhost"),
			config.GetString(c, "DB_USER", "postgres"),
			config.GetString(c, "DB_PASSWORD", ""),
			config.GetString(c, "DB_NAME", "blogicum"),
			config.GetString(c, "DB_PORT", "5432"),
			config.GetString(c, "DB_SSLMODE", "disable"),
		), nil
	case "supa":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		), nil
	default:
		return "", fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
}

// Connect opens the primary database and, when DB_REPLICA_DSN is set,
// routes reads to the replica.
func Connect(c map[string]string) (*gorm.DB, error) {
	dsn, err := DSN(c)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(config.GetInt(c, "DB_SLOW_QUERY_MS", 2000)) * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if replica := config.GetString(c, "DB_REPLICA_DSN", ""); replica != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  replica,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}
