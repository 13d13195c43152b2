//go:build migrate

// Schema migration runner for the referrals database.
//
//	go run -tags migrate ./cmd/migrate up
//	go run -tags migrate ./cmd/migrate down
//	go run -tags migrate ./cmd/migrate version
//	go run -tags migrate ./cmd/migrate force <version>
package main

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|version|force>")
	}

	m, err := migrate.New("file://migrations", databaseURL())
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Println("referrals schema already up to date")
				return
			}
			log.Fatalf("apply migrations: %v", err)
		}
		log.Println("referrals schema migrated")

	case "down":
		if err := m.Steps(-1); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Println("nothing to roll back")
				return
			}
			log.Fatalf("roll back migration: %v", err)
		}
		log.Println("rolled back one migration")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("read schema version: %v", err)
		}
		log.Printf("schema version %d (dirty=%v)", version, dirty)

	case "force":
		if len(os.Args) < 3 {
			log.Fatal("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("bad version %q: %v", os.Args[2], err)
		}
		if err := m.Force(version); err != nil {
			log.Fatalf("force schema version: %v", err)
		}
		log.Printf("schema version forced to %d", version)

	default:
		log.Fatalf("unknown command %q, expected up, down, version or force", os.Args[1])
	}
}

// databaseURL prefers DATABASE_URL and otherwise assembles the DSN from
// the same DB_* variables the server reads.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "referrals")
	password := getEnv("DB_PASSWORD", "referrals")
	name := getEnv("DB_NAME", "referrals")
	sslmode := getEnv("DB_SSLMODE", "disable")
	return "postgres://" + user + ":" + password + "@" + host + ":" + port + "/" + name + "?sslmode=" + sslmode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
