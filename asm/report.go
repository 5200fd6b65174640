package asm

import (
	"github.com/sirupsen/logrus"
)

// Reporter receives the diagnostics and status of an assembly.
type Reporter interface {
	// Error receives a user facing error.
	Error(diag *Diagnostic)
	// Internal receives an assembler integrity failure.
	Internal(diag *Diagnostic)
	// Output receives a status message.
	Output(msg string)
}

// LogReporter sends diagnostics to a logrus logger.
type LogReporter struct {
	Log logrus.FieldLogger // If nil, the standard logger.
}

var _ Reporter = (*LogReporter)(nil)

func (lr *LogReporter) log() logrus.FieldLogger {
	if lr.Log == nil {
		return logrus.StandardLogger()
	}
	return lr.Log
}

func (lr *LogReporter) fields(diag *Diagnostic) logrus.FieldLogger {
	return lr.log().WithFields(logrus.Fields{
		"source": diag.Source,
		"line":   diag.Line,
		"column": diag.Column,
	})
}

func (lr *LogReporter) Error(diag *Diagnostic) {
	lr.fields(diag).Error(diag.Err)
}

func (lr *LogReporter) Internal(diag *Diagnostic) {
	lr.fields(diag).WithField("internal", true).Error(diag.Err)
}

func (lr *LogReporter) Output(msg string) {
	lr.log().Info(msg)
}

// Collector keeps diagnostics in memory.
type Collector struct {
	Errors    []*Diagnostic
	Internals []*Diagnostic
	Messages  []string
}

var _ Reporter = (*Collector)(nil)

func (col *Collector) Error(diag *Diagnostic) {
	col.Errors = append(col.Errors, diag)
}

func (col *Collector) Internal(diag *Diagnostic) {
	col.Internals = append(col.Internals, diag)
}

func (col *Collector) Output(msg string) {
	col.Messages = append(col.Messages, msg)
}
