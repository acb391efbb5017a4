package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"taskflow-backend/internal/ai"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/chat"
	"taskflow-backend/internal/config"
	"taskflow-backend/internal/db"
	"taskflow-backend/internal/tasks"
	"taskflow-backend/internal/tools"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	database, err := db.Connect(cfg.ConnString())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	logger.Info("connected to PostgreSQL")

	// ----- wiring -----

	secret := []byte(cfg.JWTSecret)
	mw := auth.NewMiddleware(secret)

	authHandler := auth.NewHandler(database, secret, cfg.AccessTokenTTL, logger)

	store := tasks.NewStore(database)
	taskHandler := tasks.NewHandler(store, logger)

	aiClient := ai.New(cfg.GeminiKey, cfg.GeminiModel)
	runner := tools.NewRunner(store, logger)
	chatHandler := chat.NewHandler(chat.NewSessions(), store, aiClient, runner, logger)

	// ----- routes -----

	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Welcome to the AI-Powered Todo Application API",
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", mw.Wrap(authHandler.Me)).Methods(http.MethodGet)
	r.HandleFunc("/auth/logout", mw.Wrap(authHandler.Logout)).Methods(http.MethodPost)
	r.HandleFunc("/auth/account", mw.Wrap(authHandler.DeleteAccount)).Methods(http.MethodDelete)

	r.HandleFunc("/tasks/", mw.Wrap(taskHandler.Create)).Methods(http.MethodPost)
	r.HandleFunc("/tasks/", mw.Wrap(taskHandler.List)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", mw.Wrap(taskHandler.Get)).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", mw.Wrap(taskHandler.Update)).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", mw.Wrap(taskHandler.Delete)).Methods(http.MethodDelete)

	r.HandleFunc("/chat/", mw.Wrap(chatHandler.Chat)).Methods(http.MethodPost)

	// ----- CORS -----

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	logger.Info("API server is running", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
