package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	api "github.com/rpupo63/blogicum/api"
	"github.com/rpupo63/blogicum/config"
	"github.com/rpupo63/blogicum/database"
	"github.com/rpupo63/blogicum/models"
)

func main() {
	// Load environment variables from .env file
	c, err := config.Load()
	if err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
		c = config.New()
	}
	setupLogger(c)

	log.Info().Str("db_type", config.GetString(c, "DB_TYPE", "postgres")).Msg("Initializing app...")

	db, err := database.Connect(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If migrating, create or alter tables and exit
	if config.GetBool(c, "MIGRATE", false) {
		if err := models.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
		return
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if _, err := models.GenerateColumnMismatchReport(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	currentDB := database.New(db)
	bootstrapStaff(c, currentDB)

	// Room for both senders, so neither blocks once main stops reading
	errChannel := make(chan error, 2)

	server, err := api.NewServer(currentDB, c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// setupLogger configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT
func setupLogger(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if config.GetString(c, "LOG_FORMAT", "console") == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// bootstrapStaff creates the configured staff account when it is missing
func bootstrapStaff(c map[string]string, db database.Database) {
	username := config.GetString(c, "ADMIN_USERNAME", "")
	password := config.GetString(c, "ADMIN_PASSWORD", "")
	if username == "" || password == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := db.UserRepo().EnsureStaff(ctx, username, password)
	if err != nil {
		log.Fatal().Err(err).Str("username", username).Msg("Error creating staff user")
	}
	if created {
		log.Info().Str("username", username).Msg("Staff user created")
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
