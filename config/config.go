package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config carries the full runtime configuration of the portal.
type Config struct {
	ListenAddr string
	LogLevel   string

	// Backend selects the data service implementation: "rest" talks to
	// the hosted backend, "postgres" runs against a local database.
	Backend string

	// Hosted data service (rest backend).
	ServiceBaseURL string
	ServiceAPIKey  string

	// Direct database (postgres backend).
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Kafka (row-change feed + payment events).
	KafkaBrokers       string
	KafkaChangesTopic  string
	KafkaPaymentsTopic string

	// Receipt email.
	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string
}

// Load reads .env (when present) and the environment into a Config.
func Load() *Config {
	// Try loading .env from different locations
	envLocations := []string{
		".env",
		"config/.env",
		"../config/.env",
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnvWithDefault("LOG_LEVEL", "INFO"),

		Backend: getEnvWithDefault("BACKEND", "rest"),

		ServiceBaseURL: getEnvWithDefault("SERVICE_BASE_URL", "http://localhost:9000"),
		ServiceAPIKey:  os.Getenv("SERVICE_API_KEY"),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "postgres"),
		DBPassword: getEnvWithDefault("DB_PASSWORD", "postgres"),
		DBName:     getEnvWithDefault("DB_NAME", "feeportal"),

		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		KafkaChangesTopic:  getEnvWithDefault("KAFKA_CHANGES_TOPIC", "students.changes"),
		KafkaPaymentsTopic: getEnvWithDefault("KAFKA_PAYMENTS_TOPIC", "payments"),

		SMTPHost:  getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getEnvWithDefault("SMTP_PORT", "587"),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: os.Getenv("EMAIL_FROM"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// DBConnString assembles the Postgres DSN for the postgres backend.
func (c *Config) DBConnString() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=disable"
}
