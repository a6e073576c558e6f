package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/fhuszti/music-delivery-ms-go/internal/db"
	"github.com/fhuszti/music-delivery-ms-go/internal/migration"
)

// NewTestDB creates a throwaway schema on the server named by TEST_DB_DSN,
// opens a pool on it the way the services do, and drops it when t ends.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Fatal("TEST_DB_DSN is not set")
	}
	server, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse TEST_DB_DSN: %v", err)
	}

	name := schemaName(server.DBName)
	server.DBName = ""
	admin, err := sql.Open("mysql", server.FormatDSN())
	if err != nil {
		t.Fatalf("open admin pool: %v", err)
	}
	t.Cleanup(func() { _ = admin.Close() })

	if _, err := admin.Exec("CREATE DATABASE " + name); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if _, err := admin.Exec("DROP DATABASE " + name); err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	server.DBName = name
	database, err := db.New(server.FormatDSN(), 5, 5, time.Minute, db.WithMultiStatements())
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return database.DB
}

// NewMigratedDB is NewTestDB with the schema applied.
func NewMigratedDB(t testing.TB) *sql.DB {
	t.Helper()
	database := NewTestDB(t)
	if err := migration.MigrateUp(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func schemaName(prefix string) string {
	if prefix == "" {
		prefix = "music"
	}
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}
