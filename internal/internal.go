// Package internal contains internal implementation details shared
// between the netsim core and its tests.
package internal

import "github.com/bassosimone/netsim"

// NullLogger is a [netsim.Logger] that does not emit logs.
type NullLogger struct{}

// Debug implements netsim.Logger.
func (nl *NullLogger) Debug(message string) {
	// nothing
}

// Debugf implements netsim.Logger.
func (nl *NullLogger) Debugf(format string, v ...any) {
	// nothing
}

// Info implements netsim.Logger.
func (nl *NullLogger) Info(message string) {
	// nothing
}

// Infof implements netsim.Logger.
func (nl *NullLogger) Infof(format string, v ...any) {
	// nothing
}

// Warn implements netsim.Logger.
func (nl *NullLogger) Warn(message string) {
	// nothing
}

// Warnf implements netsim.Logger.
func (nl *NullLogger) Warnf(format string, v ...any) {
	// nothing
}

var _ netsim.Logger = &NullLogger{}
