package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dferreira/authserver/internal/auth"
	"github.com/dferreira/authserver/internal/config"
	"github.com/dferreira/authserver/internal/database"
	"github.com/dferreira/authserver/internal/mail"
	"github.com/dferreira/authserver/internal/session"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v\n", err)
	}

	// Setup database
	db, err := database.InitializeBadgerDB(cfg.Database.Dir, false)
	if err != nil {
		log.Fatalf("Error opening database: %v\n", err)
	}

	sessions := session.NewManager(cfg.Session.Secret)
	mailer := mail.NewSMTPMailer(cfg.Mail)
	svc := auth.NewService(db, db, sessions, mailer, cfg.FrontendURL)

	// Setup routing
	r := mux.NewRouter()
	auth.SetupRoutes(r, svc)
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Home Page")
	}).Methods(http.MethodGet)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := http.Server{
		Addr:    addr,
		Handler: r,

		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s\n", cfg.Server.URL())
		log.Fatal(srv.ListenAndServe())
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	<-c

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Printf("Error shutting down server: %v\n", err)
	}

	log.Println("Closing database connection...")
	err = db.Close()
	if err != nil {
		log.Printf("Error closing database: %v\n", err)
	}
}
