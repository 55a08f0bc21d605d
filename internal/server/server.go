// Package server provides the HTTP REST API over the pipeline engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/publish-agent/internal/engine"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	validate   *validator.Validate
	contentDir string
}

// Config holds server configuration
type Config struct {
	Port       int
	ContentDir string
}

// New creates a new server instance over an already-constructed engine.
func New(cfg Config, eng *engine.Engine) *Server {
	s := &Server{
		engine:     eng,
		validate:   validator.New(),
		contentDir: cfg.ContentDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Content items and stage execution
	mux.HandleFunc("GET /items", s.handleListItems)
	mux.HandleFunc("GET /items/{slug}/stages", s.handleListStages)
	mux.HandleFunc("POST /items/{slug}/stages/{stage_id}/run", s.handleRunStage)

	// Pipeline editing; every successful mutation is saved wholesale
	mux.HandleFunc("GET /pipeline", s.handleGetPipeline)
	mux.HandleFunc("POST /pipeline/stages", s.handleAddStage)
	mux.HandleFunc("DELETE /pipeline/stages/{stage_id}", s.handleRemoveStage)
	mux.HandleFunc("POST /pipeline/stages/{stage_id}/move", s.handleMoveStage)
	mux.HandleFunc("POST /pipeline/stages/{stage_id}/enabled", s.handleSetEnabled)

	// Transforms: read, manual edit (write-through), approval
	mux.HandleFunc("GET /items/{slug}/transforms/{platform}", s.handleGetTransform)
	mux.HandleFunc("PUT /items/{slug}/transforms/{platform}", s.handlePutTransform)
	mux.HandleFunc("POST /items/{slug}/transforms/{platform}/approve", s.handleApproveTransform)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // stage runs can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// jsonResponse writes a JSON response body
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// errorResponse writes a JSON error body
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// engineError maps engine errors to HTTP responses.
func (s *Server) engineError(w http.ResponseWriter, err error) {
	var rejected *engine.RejectedError
	if errors.As(err, &rejected) {
		s.errorResponse(w, http.StatusConflict, rejected.Reason)
		return
	}
	s.errorResponse(w, http.StatusInternalServerError, err.Error())
}
