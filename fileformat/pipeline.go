package fileformat

import (
	"context"
	"sort"
	"strings"

	"github.com/bpdmkit/partnerfile"
	"github.com/bpdmkit/partnerfile/source"
)

// Options configure the upload pipeline.
type Options struct {
	// Delimiter fixes the field delimiter; 0 sniffs it from the first line.
	Delimiter rune
	// Required overrides the default required-column set (externalId is
	// always required). Nil means RequiredColumns().
	Required []string
	// AllowUnknownColumns keeps header columns the catalog does not know
	// instead of rejecting them.
	AllowUnknownColumns bool
}

// DecodeResult is the outcome of decoding an upload file.
type DecodeResult struct {
	Schema   partnerfile.Schema
	Records  []partnerfile.Record
	Payloads []map[string]any // API payloads, aligned with Records
}

// coordinatePrefixes are the related-column groups: longitude and latitude
// must be set together (altitude is free-standing).
var coordinatePrefixes = []string{
	"address.physicalPostalAddress.geographicCoordinates.l",
	"address.alternativePostalAddress.geographicCoordinates.l",
}

// Decode runs the full upload pipeline: sniff the delimiter, build and check
// the schema against the catalog, group rows into records, enforce the
// related-column rule and produce validated API payloads.
//
// Errors are isolated per record: issues are accumulated and returned
// together with every record that decoded cleanly.
func Decode(ctx context.Context, data []byte, opt Options) (*DecodeResult, error) {
	delim := opt.Delimiter
	if delim == 0 {
		var err error
		delim, err = source.Sniff(data)
		if err != nil {
			return nil, partnerfile.Issues{{Code: partnerfile.CodeNoDelimiter, Line: 1, Message: err.Error(), Cause: err}}
		}
	}
	rows, err := source.ReadAll(data, delim)
	if err != nil {
		return nil, partnerfile.Issues{{Code: partnerfile.CodeRowWidth, Message: "malformed delimited text", Cause: err}}
	}
	if len(rows) == 0 {
		return nil, partnerfile.Issues{{Code: partnerfile.CodeEmptyHeader, Line: 1, Message: "file has no header line"}}
	}
	schema, err := partnerfile.BuildSchema(rows[0])
	if err != nil {
		return nil, err
	}
	if err := checkHeader(schema, opt.AllowUnknownColumns); err != nil {
		return nil, err
	}

	required := opt.Required
	if required == nil {
		required = RequiredColumns()
	}
	codec, err := partnerfile.New(schema, partnerfile.Options{Delimiter: delim, Required: required})
	if err != nil {
		return nil, err
	}

	relIss, related := relatedColumnIssues(schema, rows[1:])
	var iss partnerfile.Issues
	iss = append(iss, relIss...)
	recs, derr := codec.DecodeRows(ctx, rows[1:])
	if di, ok := partnerfile.AsIssues(derr); ok {
		iss = append(iss, di...)
	}

	res := &DecodeResult{Schema: schema}
	for _, rec := range recs {
		if related[rec.ExternalID] {
			continue
		}
		payload, pIss := ToPayload(rec)
		if len(pIss) > 0 {
			iss = append(iss, pIss...)
			continue
		}
		res.Records = append(res.Records, rec)
		res.Payloads = append(res.Payloads, payload)
	}
	return res, iss.OrNil()
}

// checkHeader verifies uploaded columns against the catalog: every column
// must be known (unless allowed) and no non-optional column may be missing.
func checkHeader(schema partnerfile.Schema, allowUnknown bool) error {
	var iss partnerfile.Issues
	present := map[string]bool{}
	for _, col := range schema.Columns {
		key := col.Path.String()
		if _, ok := pathSpecs[key]; !ok {
			if !allowUnknown {
				iss = append(iss, partnerfile.Issue{Code: partnerfile.CodeUnknownColumn, Line: 1,
					Column: col.Name, Message: "column is not part of the upload format"})
			}
			continue
		}
		present[key] = true
	}
	for _, spec := range Columns() {
		if spec.Optional {
			continue
		}
		if !present[partnerfile.ToPath(spec.Name).String()] {
			iss = append(iss, partnerfile.Issue{Code: partnerfile.CodeMissingColumn, Line: 1,
				Column: spec.Name, Message: "required column is missing"})
		}
	}
	return iss.OrNil()
}

// relatedColumnIssues enforces, per row, that either all or none of a
// related column group are set. The returned set names the external
// identifiers of the offending rows so the caller can drop those records;
// uploading them would fill the missing coordinate with zero.
func relatedColumnIssues(schema partnerfile.Schema, rows [][]string) (partnerfile.Issues, map[string]bool) {
	var iss partnerfile.Issues
	violated := map[string]bool{}
	idIdx := schema.Index(partnerfile.DefaultIdentifierColumn)
	for _, prefix := range coordinatePrefixes {
		var idx []int
		var names []string
		for i, col := range schema.Columns {
			if strings.HasPrefix(col.Path.String(), prefix) {
				idx = append(idx, i)
				names = append(names, col.Name)
			}
		}
		if len(idx) < 2 {
			continue
		}
		for r, row := range rows {
			if len(row) != len(schema.Columns) {
				continue // width issues are reported by the codec
			}
			set := 0
			for _, i := range idx {
				if partnerfile.Collapse(row[i]) != "" {
					set++
				}
			}
			if set != 0 && set != len(idx) {
				id := ""
				if idIdx >= 0 {
					id = partnerfile.Collapse(row[idIdx])
				}
				if id != "" {
					violated[id] = true
				}
				iss = append(iss, partnerfile.Issue{Code: partnerfile.CodeRelatedColumns, Line: r + 2,
					Column: strings.Join(names, ", "), ExternalID: id,
					Message: "either all or none of the related columns must be set"})
			}
		}
	}
	return iss, violated
}

// Encode renders API records as a download file against the canonical
// header: semicolon-delimited, UTF-8 BOM, one main row per record plus
// continuation rows for repeated array elements. Unknown payload keys are
// returned for logging.
func Encode(ctx context.Context, payloads []map[string]any) ([]byte, []string, error) {
	schema := CanonicalSchema()
	codec, err := partnerfile.New(schema, partnerfile.Options{Delimiter: ';'})
	if err != nil {
		return nil, nil, err
	}
	var recs []partnerfile.Record
	unknownSet := map[string]bool{}
	for _, payload := range payloads {
		rec, unknown := FromPayload(payload)
		for _, k := range unknown {
			unknownSet[k] = true
		}
		recs = append(recs, rec)
	}
	rows, err := codec.EncodeRecords(ctx, recs)
	if err != nil {
		return nil, nil, err
	}
	out, err := source.WriteAllBOM(append([][]string{schema.Header()}, rows...), ';')
	if err != nil {
		return nil, nil, err
	}
	var unknown []string
	for k := range unknownSet {
		unknown = append(unknown, k)
	}
	sort.Strings(unknown)
	return out, unknown, nil
}
