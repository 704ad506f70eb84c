// Package config загрузка настроек сервиса.
//
// Порядок источников: файл .env (если есть), переменные окружения, явно заданные флаги.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/fsdevblog/shortlinks/internal/db"
)

const envFile = ".env"

type Config struct {
	// Адрес, на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"localhost:8080"`
	// Базовый адрес результирующего сокращенного URL
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	// Тип хранилища
	Storage       db.StorageType `env:"STORAGE"        envDefault:"inMemory"`
	SQLitePath    string         `env:"SQLITE_PATH"    envDefault:"shortener.sqlite"`
	DatabaseDSN   string         `env:"DATABASE_DSN"`
	MongoURI      string         `env:"MONGO_URI"`
	MongoDatabase string         `env:"MONGO_DATABASE" envDefault:"shortener"`
	// Ключ подписи cookie посетителя. Если пуст, генерируется при старте.
	VisitorJWTSecret string `env:"VISITOR_JWT_SECRET"`

	LogLevel     string `env:"LOG_LEVEL"`
	LogFile      string `env:"LOG_FILE"`
	ErrorLogFile string `env:"ERROR_LOG_FILE"`

	DefaultValidityMinutes int `env:"DEFAULT_VALIDITY_MINUTES" envDefault:"30"`
	CodeLength             int `env:"CODE_LENGTH"              envDefault:"8"`
	// 0 записывает переходы синхронно
	ClickWorkers int `env:"CLICK_WORKERS" envDefault:"4"`
	ClickBuffer  int `env:"CLICK_BUFFER"  envDefault:"1000"`
	// 0 отключает фоновое удаление истекших ссылок
	ReapInterval    time.Duration `env:"REAP_INTERVAL"    envDefault:"5m"`
	ReapGrace       time.Duration `env:"REAP_GRACE"       envDefault:"24h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// HTTPS с самоподписанным сертификатом, который выпускается при отсутствии файлов
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	TLSCertFile string `env:"TLS_CERT_FILE" envDefault:"certs/cert.pem"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"  envDefault:"certs/key.pem"`
}

// Имена флагов командной строки.
const (
	FlagServerAddress = "a"
	FlagBaseURL       = "b"
	FlagStorage       = "storage"
	FlagSQLitePath    = "sqlite-path"
	FlagDatabaseDSN   = "d"
	FlagEnableHTTPS   = "s"
)

// RegisterFlags регистрирует флаги, которые перекрывают переменные окружения.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagServerAddress, FlagServerAddress, "localhost:8080", "Адрес сервера")
	fs.StringP(FlagBaseURL, FlagBaseURL, "http://localhost:8080", "Базовый адрес результирующего сокращенного URL")
	fs.String(FlagStorage, string(db.StorageTypeInMemory), "Тип хранилища: inMemory, sqlite, postgres, mongo")
	fs.String(FlagSQLitePath, "shortener.sqlite", "Путь к файлу SQLite")
	fs.StringP(FlagDatabaseDSN, FlagDatabaseDSN, "", "Строка подключения к PostgreSQL")
	fs.BoolP(FlagEnableHTTPS, FlagEnableHTTPS, false, "Запустить сервер по HTTPS")
}

// LoadConfig читает настройки. flags может быть nil.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "load %s", envFile)
	}

	var conf Config
	if err := env.Parse(&conf); err != nil {
		return nil, errors.Wrap(err, "parse ENV config error")
	}
	_, storageFromEnv := os.LookupEnv("STORAGE")

	storageFromFlag := false
	if flags != nil {
		if err := applyFlags(&conf, flags); err != nil {
			return nil, err
		}
		storageFromFlag = flags.Changed(FlagStorage)
	}

	// DSN без явного выбора хранилища означает postgres
	if conf.DatabaseDSN != "" && !storageFromEnv && !storageFromFlag {
		conf.Storage = db.StorageTypePostgres
	}

	if err := conf.finalize(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// MustLoadConfig вызывает панику если произошла ошибка.
func MustLoadConfig(flags *pflag.FlagSet) *Config {
	conf, err := LoadConfig(flags)
	if err != nil {
		panic(err)
	}
	return conf
}

func applyFlags(conf *Config, flags *pflag.FlagSet) error {
	targets := map[string]*string{
		FlagServerAddress: &conf.ServerAddress,
		FlagBaseURL:       &conf.BaseURL,
		FlagSQLitePath:    &conf.SQLitePath,
		FlagDatabaseDSN:   &conf.DatabaseDSN,
	}
	for name, target := range targets {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		val, err := flags.GetString(name)
		if err != nil {
			return errors.Wrapf(err, "read flag %s", name)
		}
		*target = val
	}
	if flags.Lookup(FlagStorage) != nil && flags.Changed(FlagStorage) {
		val, err := flags.GetString(FlagStorage)
		if err != nil {
			return errors.Wrapf(err, "read flag %s", FlagStorage)
		}
		conf.Storage = db.StorageType(val)
	}
	if flags.Lookup(FlagEnableHTTPS) != nil && flags.Changed(FlagEnableHTTPS) {
		val, err := flags.GetBool(FlagEnableHTTPS)
		if err != nil {
			return errors.Wrapf(err, "read flag %s", FlagEnableHTTPS)
		}
		conf.EnableHTTPS = val
	}
	return nil
}

func (c *Config) finalize() error {
	if _, err := db.ParseStorageType(string(c.Storage)); err != nil {
		return errors.Wrap(err, "invalid storage")
	}

	baseURL, err := url.ParseRequestURI(c.BaseURL)
	if err != nil || baseURL.Host == "" {
		return errors.Errorf("invalid base url %q", c.BaseURL)
	}
	// отсекаем Path и Query, если они заданы в базовом урле
	c.BaseURL = (&url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host}).String()

	if c.DefaultValidityMinutes < 1 || c.DefaultValidityMinutes > 1440 { //nolint:mnd
		return errors.Errorf("DEFAULT_VALIDITY_MINUTES must be in 1..1440, got %d", c.DefaultValidityMinutes)
	}
	if c.CodeLength < 3 || c.CodeLength > 20 { //nolint:mnd
		return errors.Errorf("CODE_LENGTH must be in 3..20, got %d", c.CodeLength)
	}
	if c.ClickWorkers < 0 || c.ClickBuffer < 0 {
		return errors.New("CLICK_WORKERS and CLICK_BUFFER must not be negative")
	}

	if c.VisitorJWTSecret == "" {
		secret := make([]byte, 32) //nolint:mnd
		if _, randErr := rand.Read(secret); randErr != nil {
			return errors.Wrap(randErr, "generate visitor secret")
		}
		c.VisitorJWTSecret = hex.EncodeToString(secret)
	}
	return nil
}

// DefaultValidity срок жизни ссылки по умолчанию.
func (c *Config) DefaultValidity() time.Duration {
	return time.Duration(c.DefaultValidityMinutes) * time.Minute
}

// FactoryConfig параметры подключения к хранилищу.
func (c *Config) FactoryConfig() db.FactoryConfig {
	return db.FactoryConfig{
		StorageType:   c.Storage,
		PostgresDSN:   &c.DatabaseDSN,
		SqliteDBPath:  &c.SQLitePath,
		MongoURI:      &c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}
}
