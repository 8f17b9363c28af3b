package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI     string
	MongoDB      string
	Port         string
	JWTSecret    string
	AllowOrigins string

	// SMTP is optional; the mailer logs instead of sending when Host is empty.
	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment variables")
	}

	cfg := Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "nexus"),
		Port:         getEnv("PORT", "8000"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		AllowOrigins: getEnv("ALLOW_ORIGINS", "*"),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
	}
	return cfg
}
