// Package logs сборка zap логгера приложения.
package logs

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EncodingType определяет формат вывода логов.
type EncodingType string

// LevelType определяет уровень логирования.
type LevelType string

// EncodingTypeConsole Форматирование для консоли.
// EncodingTypeJSON Форматирование в JSON.
const (
	EncodingTypeConsole EncodingType = "console"
	EncodingTypeJSON    EncodingType = "json"
)

// LevelTypeDebug Отладочный уровень.
// LevelTypeInfo Информационный уровень.
// LevelTypeWarning Уровень предупреждений.
// LevelTypeError Уровень ошибок.
// LevelTypeFatal Фатальный уровень.
// LevelTypePanic Уровень паники.
const (
	LevelTypeDebug   LevelType = "debug"
	LevelTypeInfo    LevelType = "info"
	LevelTypeWarning LevelType = "warn"
	LevelTypeError   LevelType = "error"
	LevelTypeFatal   LevelType = "fatal"
	LevelTypePanic   LevelType = "panic"
)

// LoggerOptions настройки логгера.
type LoggerOptions struct {
	Level            LevelType      // Уровень логирования
	Encoding         EncodingType   // Формат вывода
	OutputPaths      []string       // Пути вывода логов
	ErrorOutputPaths []string       // Пути вывода внутренних ошибок zap
	ErrorLogPaths    []string       // Дополнительные пути только для записей уровня error и выше
	InitialFields    map[string]any // Начальные поля для каждой записи
}

// WithLevel задаёт уровень, пустая строка оставляет уровень по умолчанию.
func WithLevel(level string) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		if level != "" {
			o.Level = LevelType(level)
		}
	}
}

// WithOutput заменяет основной вывод (по умолчанию stdout).
func WithOutput(paths ...string) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		if len(paths) > 0 {
			o.OutputPaths = paths
		}
	}
}

// WithFile дописывает логи в файл path (например logs/app.log).
func WithFile(path string) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		if path != "" {
			o.OutputPaths = append(o.OutputPaths, path)
		}
	}
}

// WithErrorFile дублирует записи уровня error и выше в файл path (например logs/error.log).
func WithErrorFile(path string) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		if path != "" {
			o.ErrorLogPaths = append(o.ErrorLogPaths, path)
		}
	}
}

// New создает новый логгер с указанными настройками.
// Вне релизного режима gin (GIN_MODE != release) по умолчанию debug уровень и консольный формат.
//
// Параметры:
//   - opts: функции для настройки логгера
//
// Возвращает:
//   - *zap.Logger: настроенный логгер
//   - error: ошибка создания логгера
func New(opts ...func(*LoggerOptions)) (*zap.Logger, error) {
	isProduction := os.Getenv("GIN_MODE") == "release"

	var encoding = EncodingTypeConsole
	var level = LevelTypeDebug
	if isProduction {
		encoding = EncodingTypeJSON
		level = LevelTypeInfo
	}

	options := LoggerOptions{
		Level:            level,
		Encoding:         encoding,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	for _, opt := range opts {
		opt(&options)
	}

	lvl, errLvl := zap.ParseAtomicLevel(string(options.Level))
	if errLvl != nil {
		return nil, fmt.Errorf("parse level: %s", errLvl.Error())
	}

	if err := ensureDirs(options.OutputPaths, options.ErrorOutputPaths, options.ErrorLogPaths); err != nil {
		return nil, err
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	conf := zap.Config{
		Level:            lvl,
		Development:      !isProduction,
		Encoding:         string(options.Encoding),
		EncoderConfig:    encoderConfig,
		OutputPaths:      options.OutputPaths,
		ErrorOutputPaths: options.ErrorOutputPaths,
		InitialFields:    options.InitialFields,
	}

	buildOpts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
	if len(options.ErrorLogPaths) > 0 {
		sink, _, openErr := zap.Open(options.ErrorLogPaths...)
		if openErr != nil {
			return nil, fmt.Errorf("open error log: %s", openErr.Error())
		}
		errorCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, zap.ErrorLevel)
		buildOpts = append(buildOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, errorCore)
		}))
	}

	log, err := conf.Build(buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("build logger: %s", err.Error())
	}
	return log, nil
}

// MustNew создает новый логгер с указанными настройками.
// В случае ошибки вызывает panic.
func MustNew(opts ...func(*LoggerOptions)) *zap.Logger {
	log, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return log
}

// ensureDirs создает каталоги для файловых путей вывода.
func ensureDirs(groups ...[]string) error {
	for _, paths := range groups {
		for _, p := range paths {
			if p == "stdout" || p == "stderr" {
				continue
			}
			dir := filepath.Dir(p)
			if dir == "." {
				continue
			}
			if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
				return fmt.Errorf("create log dir %s: %w", dir, err)
			}
		}
	}
	return nil
}
