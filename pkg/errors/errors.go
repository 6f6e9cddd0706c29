// Package errors provides the structured error taxonomy for the rulpipe
// training workflow. Every pipeline stage fails fast with one of these typed
// errors so the failing stage and offending condition are identifiable from
// the message alone. Stack traces are attached via cockroachdb/errors and the
// types marshal themselves into zerolog events for structured logging.
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Ingestion errors
//
// ===========================================================================

// DataNotFoundError indicates that no raw data file matching the expected
// naming convention could be located in the archive or directory.
type DataNotFoundError struct {
	Path    string
	Pattern string
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("rulpipe: no file matching %q found under %s", e.Pattern, e.Path)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DataNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("pattern", e.Pattern).
		Str("type", "DataNotFoundError")
}

// NewDataNotFoundError creates a DataNotFoundError with a stack trace.
func NewDataNotFoundError(path, pattern string) error {
	return errors.WithStack(&DataNotFoundError{Path: path, Pattern: pattern})
}

// FormatError indicates that a raw data file does not match the expected
// whitespace-delimited column layout.
type FormatError struct {
	File     string
	Line     int
	Expected int
	Got      int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("rulpipe: %s:%d: expected %d whitespace-delimited columns, got %d",
		e.File, e.Line, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *FormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("file", e.File).
		Int("line", e.Line).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "FormatError")
}

// NewFormatError creates a FormatError with a stack trace.
func NewFormatError(file string, line, expected, got int) error {
	return errors.WithStack(&FormatError{File: file, Line: line, Expected: expected, Got: got})
}

// ===========================================================================
//
//	Schema and configuration errors
//
// ===========================================================================

// SchemaError indicates that a table is missing columns a stage requires.
type SchemaError struct {
	Op      string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("rulpipe: %s: missing required columns: %s", e.Op, strings.Join(e.Missing, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SchemaError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("missing_columns", e.Missing).
		Str("type", "SchemaError")
}

// NewSchemaError creates a SchemaError with a stack trace.
func NewSchemaError(op string, missing ...string) error {
	return errors.WithStack(&SchemaError{Op: op, Missing: missing})
}

// UnsupportedStrategyError indicates an unrecognized strategy name for a
// polymorphic stage (imputation, feature engineering, outlier detection).
type UnsupportedStrategyError struct {
	Kind      string
	Name      string
	Supported []string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("rulpipe: unsupported %s strategy %q (supported: %s)",
		e.Kind, e.Name, strings.Join(e.Supported, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UnsupportedStrategyError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("kind", e.Kind).
		Str("strategy", e.Name).
		Strs("supported", e.Supported).
		Str("type", "UnsupportedStrategyError")
}

// NewUnsupportedStrategyError creates an UnsupportedStrategyError with a stack trace.
func NewUnsupportedStrategyError(kind, name string, supported ...string) error {
	return errors.WithStack(&UnsupportedStrategyError{Kind: kind, Name: name, Supported: supported})
}

// UnknownAlgorithmError indicates an algorithm name that is not registered
// with the model trainer.
type UnknownAlgorithmError struct {
	Name  string
	Known []string
}

func (e *UnknownAlgorithmError) Error() string {
	return fmt.Sprintf("rulpipe: unknown algorithm %q (registered: %s)",
		e.Name, strings.Join(e.Known, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UnknownAlgorithmError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", e.Name).
		Strs("registered", e.Known).
		Str("type", "UnknownAlgorithmError")
}

// NewUnknownAlgorithmError creates an UnknownAlgorithmError with a stack trace.
func NewUnknownAlgorithmError(name string, known ...string) error {
	return errors.WithStack(&UnknownAlgorithmError{Name: name, Known: known})
}

// ===========================================================================
//
//	Value domain errors
//
// ===========================================================================

// InvalidDomainError indicates an input value outside the mathematical
// domain of a transform, e.g. a negative value passed to a log transform.
type InvalidDomainError struct {
	Op     string
	Column string
	Value  float64
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("rulpipe: %s: value %g in column %q is outside the valid domain",
		e.Op, e.Value, e.Column)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InvalidDomainError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Float64("value", e.Value).
		Str("type", "InvalidDomainError")
}

// NewInvalidDomainError creates an InvalidDomainError with a stack trace.
func NewInvalidDomainError(op, column string, value float64) error {
	return errors.WithStack(&InvalidDomainError{Op: op, Column: column, Value: value})
}

// InvalidRatioError indicates a train/test split ratio outside (0, 1).
type InvalidRatioError struct {
	Ratio float64
}

func (e *InvalidRatioError) Error() string {
	return fmt.Sprintf("rulpipe: split ratio must be in (0, 1), got %g", e.Ratio)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InvalidRatioError) MarshalZerologObject(event *zerolog.Event) {
	event.Float64("ratio", e.Ratio).
		Str("type", "InvalidRatioError")
}

// NewInvalidRatioError creates an InvalidRatioError with a stack trace.
func NewInvalidRatioError(ratio float64) error {
	return errors.WithStack(&InvalidRatioError{Ratio: ratio})
}

// SchemaMismatchError indicates that the feature columns presented at
// prediction time differ from the schema the model was trained on.
type SchemaMismatchError struct {
	Op       string
	Expected []string
	Got      []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("rulpipe: %s: feature schema mismatch: trained on [%s], got [%s]",
		e.Op, strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("expected", e.Expected).
		Strs("got", e.Got).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError creates a SchemaMismatchError with a stack trace.
func NewSchemaMismatchError(op string, expected, got []string) error {
	return errors.WithStack(&SchemaMismatchError{Op: op, Expected: expected, Got: got})
}

// ===========================================================================
//
//	Estimator-level errors
//
// ===========================================================================

// NotFittedError indicates Predict or Transform was called before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("rulpipe: %s: this estimator is not fitted yet. Call Fit() before using %s()",
		e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError indicates that input dimensions differ from expectations.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("rulpipe: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError indicates an argument value that is otherwise invalid.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("rulpipe: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches the target error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As reports whether err can be cast to the target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to an error.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyData is returned when a stage receives a table with no rows.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a least-squares system is singular.
	ErrSingularMatrix = New("singular matrix")
)
