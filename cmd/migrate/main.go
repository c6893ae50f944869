package main

import (
	"flag"
	"log"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
)

func main() {
	migrationsDir := flag.String("dir", "migrations", "directory containing SQL migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.UsePostgres() {
		// SQLite development databases are migrated through GORM.
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("SQLite schema is up to date")
		return
	}

	db, err := database.NewSQL(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db, *migrationsDir); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}
