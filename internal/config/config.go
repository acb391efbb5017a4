package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret      string
	AccessTokenTTL time.Duration

	GeminiKey   string
	GeminiModel string

	FrontendURL string
}

func Load() *Config {

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432 // fallback
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "a_very_secret_key" // dev only, override in prod
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	return &Config{
		Port: port,

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret:      secret,
		AccessTokenTTL: 30 * time.Minute,

		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel: model,

		FrontendURL: frontend,
	}
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
