package logger

import "context"

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(args ...interface{})                         {}
func (nopLogger) Info(args ...interface{})                          {}
func (nopLogger) Warn(args ...interface{})                          {}
func (nopLogger) Error(args ...interface{})                         {}
func (nopLogger) Fatal(args ...interface{})                         {}
func (nopLogger) Debugf(format string, args ...interface{})         {}
func (nopLogger) Infof(format string, args ...interface{})          {}
func (nopLogger) Warnf(format string, args ...interface{})          {}
func (nopLogger) Errorf(format string, args ...interface{})         {}
func (nopLogger) Fatalf(format string, args ...interface{})         {}
func (n nopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n nopLogger) WithContext(ctx context.Context) Logger          { return n }
func (n nopLogger) WithComponent(component string) Logger           { return n }
