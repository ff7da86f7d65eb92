package logger

import (
	"time"
)

// Log is a single structured log record. It is marshaled into every sink the
// host writes logs to, the tags cover the json, mongo and postgres sinks.
type Log struct {
	ID        any       `json:"_id"        bson:"_id"        db:"id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
	Level     string    `json:"level"      bson:"level"      db:"level"`
	Msg       string    `json:"msg"        bson:"msg"        db:"msg"`
}

// Logger provides logging methods for debug, info, warning, error and fatal.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
}
