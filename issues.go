package partnerfile

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Schema kind: the header or a row shape is malformed.
	CodeEmptyHeader     = "empty_header"
	CodeEmptyColumn     = "empty_column"
	CodeDuplicateColumn = "duplicate_column"
	CodeMissingColumn   = "missing_column"
	CodeUnknownColumn   = "unknown_column"
	CodeRowWidth        = "row_width"
	CodeNoDelimiter     = "no_delimiter"

	// Continuation kind: a data row cannot be merged into the open record.
	CodeContinuationEmpty     = "continuation_empty"
	CodeContinuationAmbiguous = "continuation_ambiguous"
	CodeContinuationField     = "continuation_field"

	// Validation kind: a sealed record or a cell value violates the format.
	CodeRequiredField  = "required_field"
	CodeInvalidValue   = "invalid_value"
	CodeRelatedColumns = "related_columns"
)

// Kind classifies an Issue into one of the three error families the codec
// reports.
type Kind int

const (
	KindSchema Kind = iota
	KindContinuation
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindSchema:
		return "schema"
	case KindContinuation:
		return "continuation"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

var codeKinds = map[string]Kind{
	CodeEmptyHeader:           KindSchema,
	CodeEmptyColumn:           KindSchema,
	CodeDuplicateColumn:       KindSchema,
	CodeMissingColumn:         KindSchema,
	CodeUnknownColumn:         KindSchema,
	CodeRowWidth:              KindSchema,
	CodeNoDelimiter:           KindSchema,
	CodeContinuationEmpty:     KindContinuation,
	CodeContinuationAmbiguous: KindContinuation,
	CodeContinuationField:     KindContinuation,
	CodeRequiredField:         KindValidation,
	CodeInvalidValue:          KindValidation,
	CodeRelatedColumns:        KindValidation,
}

// Issue represents a single codec error with enough context for a precise
// diagnostic: the physical line (1-based, header is line 1), the column name
// and the external identifier of the affected record where known.
type Issue struct {
	Code       string
	Line       int    // 0 when not row-scoped
	Column     string // offending column name, optional
	ExternalID string // affected record, optional
	Message    string
	Cause      error // optional: underlying error
}

// Kind reports the error family the issue's code belongs to.
func (i Issue) Kind() Kind {
	return codeKinds[i.Code]
}

func (i Issue) Error() string {
	b := &strings.Builder{}
	if i.Line > 0 {
		fmt.Fprintf(b, "line %d: ", i.Line)
	}
	b.WriteString(i.Code)
	if i.Column != "" {
		fmt.Fprintf(b, " (column %q)", i.Column)
	}
	if i.ExternalID != "" {
		fmt.Fprintf(b, " (externalId %q)", i.ExternalID)
	}
	if i.Message != "" {
		b.WriteString(": ")
		b.WriteString(i.Message)
	}
	return b.String()
}

// Issues is a collection of codec errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].Error())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// OrNil returns the collection as an error, or nil when it is empty.
func (iss Issues) OrNil() error {
	if len(iss) == 0 {
		return nil
	}
	return iss
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var one Issue
	if errors.As(err, &one) {
		return Issues{one}, true
	}
	return nil, false
}
