package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pivot2ai/jobplans/internal/ai"
	"github.com/pivot2ai/jobplans/internal/config"
	"github.com/pivot2ai/jobplans/internal/database"
	"github.com/pivot2ai/jobplans/internal/handlers"
	"github.com/pivot2ai/jobplans/internal/models"
	"github.com/pivot2ai/jobplans/internal/services/mailer"
	"github.com/pivot2ai/jobplans/internal/services/payments"
	"github.com/pivot2ai/jobplans/internal/store"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize database (Detects Embedded vs External automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// Note: db.Close() is called manually in shutdown handler below

	// 3. Auto-Migrate Schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		&models.UserAuth{},
		&models.JobPlan{},
		&models.GenerationRecord{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Set up HTTP router
	st := store.New(db.DB)
	router := handlers.NewRouter(cfg, st)

	// 5. Wire the generation adapter
	ctx := context.Background()
	var gemini *ai.GeminiClient
	if cfg.Generation.GeminiAPIKey == "" {
		log.Println("⚠️ GEMINI_API_KEY not set, plan generation disabled")
	} else {
		gemini, err = ai.NewGeminiClient(ctx, cfg.Generation.GeminiAPIKey, cfg.Generation.GeminiModel)
		if err != nil {
			log.Printf("⚠️ Generation: failed to init Gemini client: %v", err)
		} else {
			router.SetPlanner(ai.NewPlanner(gemini))
			log.Printf("✅ Generation: Gemini client ready (%s)", cfg.Generation.GeminiModel)
		}
	}

	// 6. Wire payments and contact mail (both optional)
	if stripeClient, err := payments.NewClient(cfg.Payments); err != nil {
		log.Printf("⚠️ Payments disabled: %v", err)
	} else {
		router.SetPayments(stripeClient)
		log.Println("✅ Payments: Stripe client ready")
	}

	if m, err := mailer.New(cfg.Mail); err != nil {
		log.Printf("⚠️ Contact form disabled: %v", err)
	} else {
		router.SetMailer(m)
		log.Println("✅ Contact form: SMTP relay ready")
	}

	// 7. Start server with graceful shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 Server starting on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("\n⚠️  Received signal: %v. Shutting down gracefully...\n", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if gemini != nil {
		gemini.Close()
	}

	// Close database (this also stops embedded PostgreSQL)
	log.Println("🛑 Closing database connection...")
	if err := db.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
