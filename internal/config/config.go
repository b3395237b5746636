// Пакет config — загрузка и валидация конфигурации Inquiry API
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Inquiry API.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимальный размер пула соединений
	DBPoolMax int

	// --- JWT ---

	// Секрет подписи токенов (HS256)
	JWTSecret string
	// Время жизни выданного токена
	JWTExpires time.Duration

	// --- Вложения ---

	// Каталог хранения загруженных файлов
	UploadDir string
	// Максимальный размер одного файла в байтах
	MaxUploadSize int64
	// Максимальное количество файлов в одной загрузке
	MaxUploadFiles int

	// --- Мониторинг зависимостей ---

	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// IQ_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("IQ_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("IQ_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("IQ_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// IQ_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("IQ_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("IQ_LOG_LEVEL: %w", err)
	}

	// IQ_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("IQ_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("IQ_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// IQ_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("IQ_DB_HOST")
	if err != nil {
		return nil, err
	}

	// IQ_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("IQ_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("IQ_DB_PORT: %w", err)
	}

	// IQ_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("IQ_DB_NAME")
	if err != nil {
		return nil, err
	}

	// IQ_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("IQ_DB_USER")
	if err != nil {
		return nil, err
	}

	// IQ_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("IQ_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// IQ_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("IQ_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("IQ_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// IQ_DB_POOL_MAX — размер пула соединений (по умолчанию 20)
	cfg.DBPoolMax, err = getEnvInt("IQ_DB_POOL_MAX", 20)
	if err != nil {
		return nil, fmt.Errorf("IQ_DB_POOL_MAX: %w", err)
	}
	if cfg.DBPoolMax < 1 || cfg.DBPoolMax > 100 {
		return nil, fmt.Errorf("IQ_DB_POOL_MAX: значение %d вне допустимого диапазона 1-100", cfg.DBPoolMax)
	}

	// --- JWT ---

	// IQ_JWT_SECRET — обязательный
	cfg.JWTSecret, err = getEnvRequired("IQ_JWT_SECRET")
	if err != nil {
		return nil, err
	}

	// IQ_JWT_EXPIRES — время жизни токена (по умолчанию 24h)
	cfg.JWTExpires, err = getEnvDuration("IQ_JWT_EXPIRES", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("IQ_JWT_EXPIRES: %w", err)
	}

	// --- Вложения ---

	// IQ_UPLOAD_DIR — каталог вложений (по умолчанию ./uploads)
	cfg.UploadDir = getEnvDefault("IQ_UPLOAD_DIR", "uploads")

	// IQ_MAX_UPLOAD_SIZE — максимальный размер файла в байтах (по умолчанию 10 МБ)
	maxSize, err := getEnvInt("IQ_MAX_UPLOAD_SIZE", 10*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("IQ_MAX_UPLOAD_SIZE: %w", err)
	}
	cfg.MaxUploadSize = int64(maxSize)

	// IQ_MAX_UPLOAD_FILES — максимум файлов в одной загрузке (по умолчанию 10)
	cfg.MaxUploadFiles, err = getEnvInt("IQ_MAX_UPLOAD_FILES", 10)
	if err != nil {
		return nil, fmt.Errorf("IQ_MAX_UPLOAD_FILES: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// IQ_DEPHEALTH_GROUP — группа для topologymetrics (по умолчанию inquiry)
	cfg.DephealthGroup = getEnvDefault("IQ_DEPHEALTH_GROUP", "inquiry")

	// IQ_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("IQ_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IQ_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// IQ_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("IQ_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("IQ_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode, c.DBPoolMax,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL
// (для topologymetrics и golang-migrate).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
