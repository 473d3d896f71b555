// Package source turns raw upload bytes into rows and back. It owns the
// text-level concerns the codec itself does not: UTF-8 BOM handling,
// delimiter sniffing and LF/CRLF line endings. Supported delimiters are
// semicolon, comma and horizontal tab, fixed per file.
package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
)

// BOM is the UTF-8 byte order mark Excel prepends to CSV exports.
var BOM = []byte{0xef, 0xbb, 0xbf}

// ErrNoDelimiter is returned when the first line contains none of the
// supported delimiters.
var ErrNoDelimiter = errors.New("source: no field delimiter found in first line")

// Sniff detects the field delimiter from the first line of the data.
// Semicolon wins over comma so that Excel-style files with comma decimal
// separators inside quoted numbers parse correctly.
func Sniff(data []byte) (rune, error) {
	data = bytes.TrimPrefix(data, BOM)
	first, _, _ := bytes.Cut(data, []byte("\n"))
	switch {
	case bytes.ContainsRune(first, ';'):
		return ';', nil
	case bytes.ContainsRune(first, ','):
		return ',', nil
	case bytes.ContainsRune(first, '\t'):
		return '\t', nil
	}
	return 0, ErrNoDelimiter
}

// ReadAll splits the data into rows using the given delimiter. The BOM is
// stripped, CRLF and LF both terminate lines, and rows keep their raw
// per-line cell counts (width checking is the codec's job).
func ReadAll(data []byte, delim rune) ([][]string, error) {
	data = bytes.TrimPrefix(data, BOM)
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// WriteAll renders rows with the given delimiter and LF line endings.
func WriteAll(rows [][]string, delim rune) ([]byte, error) {
	b := &strings.Builder{}
	w := csv.NewWriter(b)
	w.Comma = delim
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// WriteAllBOM is WriteAll with a UTF-8 BOM prepended, the shape download
// results are delivered in so that Excel opens them correctly.
func WriteAllBOM(rows [][]string, delim rune) ([]byte, error) {
	body, err := WriteAll(rows, delim)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, BOM...), body...), nil
}
