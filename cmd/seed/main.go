package main

import (
	"context"
	"log"

	"healthlog/internal/config"
	"healthlog/internal/db"
	"healthlog/internal/model"
	"healthlog/internal/repository"
	"healthlog/internal/seed"
)

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.FieldDefinition{},
		&model.Record{},
		&model.RecordFieldValue{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	categoryRepo := repository.NewCategoryRepository(gormDB)
	fieldRepo := repository.NewFieldRepository(gormDB)

	log.Println("Seeding default categories...")
	created, err := seed.Apply(context.Background(), categoryRepo, fieldRepo)
	if err != nil {
		log.Fatalf("Failed to seed default categories: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New default categories created: %d", created)
	log.Printf("  - Total default categories: %d", len(seed.Defaults()))
}
