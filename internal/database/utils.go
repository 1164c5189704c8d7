package database

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Notifuse/visualeditor/config"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// GetConnectionPoolSettings returns connection pool settings based on environment
func GetConnectionPoolSettings() (maxOpen, maxIdle int, maxLifetime time.Duration) {
	environment := os.Getenv("ENVIRONMENT")

	// Use smaller pools for test environment to conserve connections
	if environment == "test" || os.Getenv("INTEGRATION_TESTS") == "true" {
		return 10, 5, 2 * time.Minute
	}

	return 25, 25, 20 * time.Minute
}

// GetSystemDSN returns the DSN for the editor database
func GetSystemDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// GetPostgresDSN returns the DSN for connecting to PostgreSQL server without specifying a database
func GetPostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/postgres?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.SSLMode,
	)
}

// Connect ensures the editor database exists, opens it through driverName
// and creates the tables. An empty driverName means plain "postgres".
func Connect(cfg *config.DatabaseConfig, driverName string) (*sql.DB, error) {
	if driverName == "" {
		driverName = "postgres"
	}

	if err := EnsureSystemDatabaseExists(GetPostgresDSN(cfg), cfg.DBName); err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, GetSystemDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen, maxIdle, maxLifetime := GetConnectionPoolSettings()
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)
	db.SetConnMaxIdleTime(maxLifetime / 2)

	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSystemDatabaseExists creates the database if it doesn't exist
func EnsureSystemDatabaseExists(dsn string, dbName string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL server: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL server: %w", err)
	}

	return createDatabaseIfMissing(db, dbName)
}

func createDatabaseIfMissing(db *sql.DB, dbName string) error {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := db.QueryRow(query, dbName).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createDBQuery := fmt.Sprintf("CREATE DATABASE %s",
			strings.ReplaceAll(dbName, `"`, `""`))

		if _, err := db.Exec(createDBQuery); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	return nil
}
