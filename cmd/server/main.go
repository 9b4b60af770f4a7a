package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"libraryapi/docs"
	"libraryapi/internal/auth"
	"libraryapi/internal/cache"
	"libraryapi/internal/config"
	"libraryapi/internal/db"
	"libraryapi/internal/handler"
	"libraryapi/internal/metrics"
	"libraryapi/internal/repository"
	"libraryapi/internal/router"
	"libraryapi/internal/service"
)

// @title Library Management API
// @version 1.0
// @description REST API for users, authors, genres, books and borrowings of a library.
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

	gormDB, err := db.Open(db.Options{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DBDSN,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: failed to drop tables: %v", err)
		} else {
			log.Println("Tables dropped")
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("%v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	store := repository.NewStore(gormDB)
	m := metrics.New()

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(store.Users(), store.Borrowings(), cacheClient)
	authorService := service.NewAuthorService(store.Authors(), store.Books(), cacheClient)
	genreService := service.NewGenreService(store.Genres(), store.Books(), cacheClient)
	bookService := service.NewBookService(store, cacheClient)
	borrowingService := service.NewBorrowingService(store, m)
	authService := service.NewAuthService(store.Users(), jwtService, tokenStore)

	// Register routes
	router.Register(e, cfg, router.Handlers{
		Users:      handler.NewUserHandler(userService),
		Authors:    handler.NewAuthorHandler(authorService),
		Genres:     handler.NewGenreHandler(genreService),
		Books:      handler.NewBookHandler(bookService),
		Borrowings: handler.NewBorrowingHandler(borrowingService),
		Auth:       handler.NewAuthHandler(authService, userService),
	}, jwtService, tokenStore, m)

	// Log swagger full path
	swaggerURL := "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
		docs.SwaggerInfo.Host = host
		if strings.HasPrefix(cfg.SwaggerHost, "http") {
			swaggerURL = strings.TrimSuffix(cfg.SwaggerHost, "/") + "/swagger/index.html"
		} else {
			swaggerURL = "http://" + cfg.SwaggerHost + "/swagger/index.html"
		}
	}
	log.Printf("Swagger documentation available at: %s", swaggerURL)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
