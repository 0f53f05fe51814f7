package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"geo-registration-service/internal/adapters/repositories"
	"geo-registration-service/internal/config"
	"geo-registration-service/internal/platform/db"
	"geo-registration-service/internal/ports"
	"log"
)

// dbtool creates the schema and optionally seeds users from a JSON file.
func main() {
	if !config.LoadDotEnv() {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", ""), "JSON file of users to seed")
	flag.Parse()

	ctx := context.Background()

	conn, repo, err := open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	log.Println("Schema ready.")

	if *seedPath == "" {
		return
	}

	log.Println("Seeding database...")
	n, err := repositories.SeedUsersFromJSON(ctx, repo, *seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. inserted=%d", n)
}

func open(ctx context.Context) (*sql.DB, ports.UserRepository, error) {
	log.Println("Initializing database schema...")

	if url := config.Get("DATABASE_URL", ""); url != "" {
		conn, err := db.Open(url)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("schema initialization failed: %w", err)
		}
		return conn, repositories.NewPostgresUserRepository(conn), nil
	}

	// OpenSQLite creates the data directory on a fresh checkout.
	conn, err := db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSqliteSchema(conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("schema initialization failed: %w", err)
	}
	return conn, repositories.NewSqliteUserRepository(conn), nil
}
