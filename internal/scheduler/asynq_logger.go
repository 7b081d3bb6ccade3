package scheduler

import (
	"fmt"
	"os"

	"lead_portal_backend/platform/logger"
)

// asynqLogger routes asynq's internal logging through the application logger.
type asynqLogger struct {
	log *logger.Logger
}

func newAsynqLogger(log *logger.Logger) asynqLogger {
	return asynqLogger{log: log}
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...), "component", "asynq") }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...), "component", "asynq") }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...), "component", "asynq") }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...), "component", "asynq") }

func (l asynqLogger) Fatal(args ...interface{}) {
	l.log.Error(fmt.Sprint(args...), "component", "asynq")
	os.Exit(1)
}
