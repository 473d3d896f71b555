package partnerfile

// Package partnerfile implements the bidirectional codec between the flat,
// delimited business-partner upload format and nested partner records:
//
// - Path mapping between dotted column names and structured field paths
//   (abbreviations, name1..name9, array roots)
// - Schema construction from a header row
// - Grouping of consecutive data rows into records, expanding continuation
//   rows into array elements
// - Encoding of records back into a main row plus continuation rows
// - A stable error model via Issues (line, column, external ID, code)
//
// Design policy:
// - Keep only the codec in the root package; the column catalog and the
//   API payload shapes live in fileformat/, raw text handling in source/.
// - The codec is pure: it consumes and produces in-memory rows and records,
//   performs no I/O and keeps no shared state between calls.
//
// Typical usage:
//
//	schema, err := partnerfile.BuildSchema(header)
//	c := partnerfile.New(schema, partnerfile.Options{})
//	recs, err := c.DecodeRows(ctx, rows)
//	rows, err := c.EncodeRecords(ctx, recs)
