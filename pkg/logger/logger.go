package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel определяет уровень логирования
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

var zapLevels = map[LogLevel]zapcore.Level{
	LevelDebug: zapcore.DebugLevel,
	LevelInfo:  zapcore.InfoLevel,
	LevelWarn:  zapcore.WarnLevel,
	LevelError: zapcore.ErrorLevel,
	LevelFatal: zapcore.FatalLevel,
}

// String возвращает имя уровня
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel разбирает уровень из строки конфигурации
func ParseLevel(s string) (LogLevel, error) {
	for level, name := range levelNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return level, nil
		}
	}
	if strings.EqualFold(strings.TrimSpace(s), "warning") {
		return LevelWarn, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger представляет структурированный логгер поверх zap
type Logger struct {
	level zap.AtomicLevel
	zl    *zap.Logger
}

// New создает production логгер (JSON) с указанным уровнем
func New(level LogLevel) *Logger {
	return NewForEnv(level, "production")
}

// NewForEnv создает логгер под окружение: development пишет в консольном формате
func NewForEnv(level LogLevel, env string) *Logger {
	var cfg zap.Config
	if strings.EqualFold(env, "development") {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	atomic := zap.NewAtomicLevelAt(zapLevels[level])
	cfg.Level = atomic

	zl, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		zl = zap.NewNop()
	}

	return &Logger{level: atomic, zl: zl}
}

// NewFromZap оборачивает готовый zap логгер
func NewFromZap(zl *zap.Logger) *Logger {
	return &Logger{level: zap.NewAtomicLevelAt(zapcore.DebugLevel), zl: zl.WithOptions(zap.AddCallerSkip(2))}
}

// NewNop создает логгер, который ничего не пишет
func NewNop() *Logger {
	return &Logger{level: zap.NewAtomicLevelAt(zapcore.FatalLevel), zl: zap.NewNop()}
}

// Sync сбрасывает буферы zap
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// Debug записывает debug сообщение
func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// Info записывает info сообщение
func (l *Logger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn записывает warning сообщение
func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error записывает error сообщение
func (l *Logger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Fatal записывает fatal сообщение и завершает программу
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log(LevelFatal, msg, fields...)
}

// WithFields возвращает логгер с предустановленными полями
func (l *Logger) WithFields(fields ...Field) *FieldLogger {
	return &FieldLogger{
		logger: l,
		fields: fields,
	}
}

// log выполняет фактическое логирование
func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	zf := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		zf = append(zf, f.zap())
	}

	switch level {
	case LevelDebug:
		l.zl.Debug(msg, zf...)
	case LevelInfo:
		l.zl.Info(msg, zf...)
	case LevelWarn:
		l.zl.Warn(msg, zf...)
	case LevelError:
		l.zl.Error(msg, zf...)
	case LevelFatal:
		l.zl.Fatal(msg, zf...)
	}
}

// FieldLogger оборачивает логгер с предустановленными полями
type FieldLogger struct {
	logger *Logger
	fields []Field
}

func (fl *FieldLogger) merge(fields []Field) []Field {
	all := make([]Field, 0, len(fl.fields)+len(fields))
	all = append(all, fl.fields...)
	return append(all, fields...)
}

// Debug записывает debug сообщение с предустановленными полями
func (fl *FieldLogger) Debug(msg string, fields ...Field) {
	fl.logger.log(LevelDebug, msg, fl.merge(fields)...)
}

// Info записывает info сообщение с предустановленными полями
func (fl *FieldLogger) Info(msg string, fields ...Field) {
	fl.logger.log(LevelInfo, msg, fl.merge(fields)...)
}

// Warn записывает warning сообщение с предустановленными полями
func (fl *FieldLogger) Warn(msg string, fields ...Field) {
	fl.logger.log(LevelWarn, msg, fl.merge(fields)...)
}

// Error записывает error сообщение с предустановленными полями
func (fl *FieldLogger) Error(msg string, fields ...Field) {
	fl.logger.log(LevelError, msg, fl.merge(fields)...)
}

// Field представляет поле логирования
type Field struct {
	Key   string
	Value interface{}
}

// String возвращает строковое представление поля
func (f Field) String() string {
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}

func (f Field) zap() zap.Field {
	switch v := f.Value.(type) {
	case error:
		return zap.NamedError(f.Key, v)
	case time.Duration:
		return zap.Duration(f.Key, v)
	case time.Time:
		return zap.Time(f.Key, v)
	default:
		return zap.Any(f.Key, v)
	}
}

// Вспомогательные функции для создания полей
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value}
}

// Глобальный логгер по умолчанию
var defaultLogger = New(LevelInfo)

// Default возвращает глобальный логгер
func Default() *Logger {
	return defaultLogger
}

// SetDefault заменяет глобальный логгер
func SetDefault(l *Logger) {
	defaultLogger = l
}
