package main

import (
	"log"
	"net/http"
	"os"

	_ "healthlog/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"healthlog/internal/auth"
	"healthlog/internal/cache"
	"healthlog/internal/config"
	"healthlog/internal/db"
	"healthlog/internal/handler"
	"healthlog/internal/model"
	"healthlog/internal/repository"
	"healthlog/internal/router"
	"healthlog/internal/service"
)

// @title Health Log API
// @version 1.0
// @description Personal health record tracker with category-driven dynamic field schemas, stats aggregation, and CSV export.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.RecordFieldValue{},
			&model.Record{},
			&model.FieldDefinition{},
			&model.Category{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.FieldDefinition{},
		&model.Record{},
		&model.RecordFieldValue{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	fieldRepo := repository.NewFieldRepository(gormDB)
	recordRepo := repository.NewRecordRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	categoryService := service.NewCategoryService(categoryRepo, fieldRepo, cacheClient)
	recordService := service.NewRecordService(recordRepo)
	statsService := service.NewStatsService(categoryService, recordRepo)
	exportService := service.NewExportService()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	recordHandler := handler.NewRecordHandler(recordService)
	statsHandler := handler.NewStatsHandler(statsService)
	exportHandler := handler.NewExportHandler(recordService, exportService)
	seedHandler := handler.NewSeedHandler(categoryRepo, fieldRepo)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		categoryHandler,
		recordHandler,
		statsHandler,
		exportHandler,
		seedHandler,
	)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: http://%s/swagger/index.html", cfg.SwaggerHost)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
