// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// SetGlobalLogger replaces the logger used by repository and cache logging.
func SetGlobalLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	GlobalLogger = &Logger{Logger: l}
}

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableRepoLogging  bool
	EnableCacheLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging:  true,
	EnableCacheLogging: true,
}

// RepoLogger provides structured logging for repository operations.
type RepoLogger struct {
	tableName string
	logger    *Logger
}

// NewRepoLogger creates a new RepoLogger for the given table.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{
		tableName: tableName,
		logger:    GlobalLogger,
	}
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, operation string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.Log(ctx, level, "repository "+operation, attrs...)
}

// LogCreate logs a repository create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "create", fields)
}

// LogUpdate logs a repository update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "update", fields)
}

// LogDelete logs a repository delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "delete", fields)
}

// LogError logs a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if err == nil {
		return
	}
	l.log(ctx, slog.LevelError, operation, map[string]any{"error": err.Error()})
}

// CacheLogger records response cache lifecycle events.
type CacheLogger struct {
	backend string
	logger  *Logger
}

// NewCacheLogger creates a CacheLogger for the named backend.
func NewCacheLogger(backend string) *CacheLogger {
	return &CacheLogger{backend: backend, logger: GlobalLogger}
}

// LogClear logs a full cache clear and the event that caused it.
func (l *CacheLogger) LogClear(ctx context.Context, reason string, epoch uint64) {
	if !Config.EnableCacheLogging {
		return
	}
	l.logger.InfoContext(ctx, "response cache cleared",
		slog.String("backend", l.backend),
		slog.String("reason", reason),
		slog.Uint64("epoch", epoch),
	)
}

// LogError logs a backend failure that was absorbed as a miss or no-op.
func (l *CacheLogger) LogError(ctx context.Context, operation string, err error) {
	if err == nil {
		return
	}
	l.logger.WarnContext(ctx, "response cache backend error",
		slog.String("backend", l.backend),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
