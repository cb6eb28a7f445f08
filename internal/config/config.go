package config

import (
	"errors"
	"log/slog"

	"github.com/corray333/backend-labs/adminlocal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings maps config keys onto the environment variable names the
// dashboard tooling already uses.
var envBindings = map[string]string{
	"server.http.port":        "PORT",
	"app.env":                 "NODE_ENV",
	"printer.name":            "PRINTER_NAME",
	"printer.type":            "PRINTER_TYPE",
	"printer.interface":       "PRINTER_INTERFACE",
	"printer.paper_size":      "PAPER_SIZE",
	"auth.jwt_secret":         "JWT_SECRET",
	"auth.username":           "ADMIN_USERNAME",
	"auth.password_hash":      "ADMIN_PASSWORD_HASH",
	"auth.session_ttl":        "SESSION_EXPIRES",
	"auth.max_login_attempts": "MAX_LOGIN_ATTEMPTS",
	"auth.lockout_duration":   "LOCKOUT_DURATION",
	"postgres.url":            "DATABASE_URL",
	"rabbitmq.url":            "RABBITMQ_URL",
	"rabbitmq.enabled":        "RABBITMQ_ENABLED",
	"otel.enabled":            "OTEL_ENABLED",
	"otel.jaeger_endpoint":    "JAEGER_ENDPOINT",
	"log.level":               "LOG_LEVEL",
}

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		slog.Warn("No .env file loaded", "error", err)
	}

	setDefaults()
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			panic("error while binding env " + env + ": " + err.Error())
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/admin-local")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
	}

	SetupLogger()
}

func setDefaults() {
	viper.SetDefault("app.env", "development")

	viper.SetDefault("server.http.port", 4000)
	viper.SetDefault("server.http.cors.allowed_origins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	viper.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "PATCH", "OPTIONS"})
	viper.SetDefault("server.http.cors.allowed_headers", []string{"Authorization", "Content-Type"})
	viper.SetDefault("server.http.cors.max_age", 300)

	viper.SetDefault("store.name", "Kloset")
	viper.SetDefault("store.support_email", "support@kloset.com")
	viper.SetDefault("store.timezone", "Local")

	viper.SetDefault("printer.name", "Receipt Printer")
	viper.SetDefault("printer.type", "EPSON")
	viper.SetDefault("printer.interface", "tcp://127.0.0.1:9100")
	viper.SetDefault("printer.paper_size", 80)
	viper.SetDefault("printer.timeout_ms", 5000)
	viper.SetDefault("printer.barcode_enabled", true)
	viper.SetDefault("printer.rate_rps", 2)
	viper.SetDefault("printer.rate_burst", 5)

	viper.SetDefault("auth.username", "admin")
	viper.SetDefault("auth.session_ttl", "8h")
	viper.SetDefault("auth.max_login_attempts", 5)
	// milliseconds
	viper.SetDefault("auth.lockout_duration", 900000)

	viper.SetDefault("autoprint.poll_interval_seconds", 30)
	viper.SetDefault("notifier.enabled", true)

	viper.SetDefault("print_log.path", "logs/print-log.txt")

	viper.SetDefault("postgres.migrations_path", "")
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.jaeger_endpoint", "http://localhost:14268/api/traces")

	viper.SetDefault("log.level", "info")
}

func SetupLogger() {
	handler := logger.NewHandler(&slog.HandlerOptions{
		Level: logger.ParseLevel(viper.GetString("log.level")),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
