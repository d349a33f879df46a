// Package logger builds slog loggers with env-driven level/format and
// context extractors that stamp request-scoped attributes (tenant id,
// actor id) onto every record.
package logger
