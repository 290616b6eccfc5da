package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmayman/mealio/internal/backup"
	"github.com/dmayman/mealio/internal/database"
	"github.com/dmayman/mealio/internal/email"
	"github.com/dmayman/mealio/internal/logging"
	"github.com/dmayman/mealio/internal/server"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	godotenv.Load()

	port := os.Getenv("MEALIO_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MEALIO_DB_PATH")
	if dbPath == "" {
		dbPath = "mealio.db"
	}

	logger := logging.Setup(os.Getenv("MEALIO_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	emailClient := email.NewClient(os.Getenv("MEALIO_POSTMARK_TOKEN"), os.Getenv("MEALIO_FROM_EMAIL"))

	srv := server.New(db, emailClient, backupConfig(dbPath), logger)

	backupCtx, stopBackups := context.WithCancel(context.Background())
	srv.BackupManager().Start(backupCtx)
	defer func() {
		stopBackups()
		srv.BackupManager().Stop()
	}()

	// Periodic sweep of expired rate-limit entries.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Mealio running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func backupConfig(dbPath string) backup.Config {
	scheduleHour, _ := strconv.Atoi(os.Getenv("MEALIO_BACKUP_HOUR"))
	retentionDays, _ := strconv.Atoi(os.Getenv("MEALIO_BACKUP_RETENTION_DAYS"))
	return backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("MEALIO_S3_ENDPOINT"),
			Bucket:    os.Getenv("MEALIO_S3_BUCKET"),
			Region:    os.Getenv("MEALIO_S3_REGION"),
			AccessKey: os.Getenv("MEALIO_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("MEALIO_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("MEALIO_BACKUP_PASSPHRASE"),
		ScheduleHour:  scheduleHour,
		RetentionDays: retentionDays,
	}
}
