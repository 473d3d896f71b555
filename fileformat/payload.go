package fileformat

import (
	"sort"
	"strings"

	"github.com/bpdmkit/partnerfile"
)

var pathSpecs = specsByPath()

// ToPayload converts a decoded record into the nested JSON shape the partner
// API accepts for upload. Cell values are validated and converted according
// to their column kinds; violations are reported as validation issues
// carrying the record's external identifier.
//
// The payload always carries the array properties and the legalEntity, site
// and address subtrees (empty when unused), mirroring what the API expects.
// The street subobject and the geographicCoordinates objects appear only
// when at least one of their fields is set; missing coordinate components
// default to 0.
func ToPayload(rec partnerfile.Record) (map[string]any, partnerfile.Issues) {
	var iss partnerfile.Issues
	invalid := func(path, msg string) {
		col := path
		if spec, ok := pathSpecs[path]; ok {
			col = spec.Name
		}
		iss = append(iss, partnerfile.Issue{Code: partnerfile.CodeInvalidValue, Column: col,
			ExternalID: rec.ExternalID, Message: msg})
	}
	typed := func(path, raw string) any {
		spec, ok := pathSpecs[path]
		if !ok {
			return raw // unknown fields are preserved verbatim
		}
		v, msg := ParseCell(spec, raw)
		if msg != "" {
			invalid(path, msg)
			return nil
		}
		return v
	}

	nameParts := []any{}
	for _, part := range rec.NameParts {
		if part != "" {
			nameParts = append(nameParts, part)
		}
	}

	result := map[string]any{
		"externalId":  rec.ExternalID,
		"nameParts":   nameParts,
		"identifiers": identifierObjects(rec, typed),
		"states":      stateObjects(rec, "states", typed),
		"roles":       roleValues(rec, typed),
		"legalEntity": map[string]any{
			"states": stateObjects(rec, "legalEntity.states", typed),
		},
		"site": map[string]any{
			"states": stateObjects(rec, "site.states", typed),
		},
		"address": map[string]any{
			"physicalPostalAddress":    map[string]any{},
			"alternativePostalAddress": map[string]any{},
			"states":                   stateObjects(rec, "address.states", typed),
		},
		"isOwnCompanyData": false,
	}

	// deterministic placement of scalar fields
	paths := make([]string, 0, len(rec.Scalars))
	for p := range rec.Scalars {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		v := typed(p, rec.Scalars[p])
		if v == nil {
			continue
		}
		setNested(result, strings.Split(p, "."), v)
	}

	for _, addr := range []string{"physicalPostalAddress", "alternativePostalAddress"} {
		fillCoordinates(result["address"].(map[string]any)[addr].(map[string]any))
	}
	return result, iss
}

func identifierObjects(rec partnerfile.Record, typed func(path, raw string) any) []any {
	out := []any{}
	for _, e := range rec.Arrays["identifiers"] {
		out = append(out, map[string]any{
			"type":        typed("identifiers.type", e.Field("type")),
			"value":       typed("identifiers.value", e.Field("value")),
			"issuingBody": typed("identifiers.issuingBody", e.Field("issuingBody")),
		})
	}
	return out
}

func stateObjects(rec partnerfile.Record, root string, typed func(path, raw string) any) []any {
	out := []any{}
	for _, e := range rec.Arrays[root] {
		out = append(out, map[string]any{
			"validFrom": typed(root+".validFrom", e.Field("validFrom")),
			"validTo":   typed(root+".validTo", e.Field("validTo")),
			"type":      typed(root+".type", e.Field("type")),
		})
	}
	return out
}

func roleValues(rec partnerfile.Record, typed func(path, raw string) any) []any {
	out := []any{}
	for _, e := range rec.Arrays["roles"] {
		if v := typed("roles", e.Value); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func setNested(m map[string]any, segs []string, v any) {
	for _, seg := range segs[:len(segs)-1] {
		child, ok := m[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[seg] = child
		}
		m = child
	}
	m[segs[len(segs)-1]] = v
}

// fillCoordinates completes a partially set geographicCoordinates object
// with zeroes. Whether longitude and latitude must be set together is
// enforced earlier, per row.
func fillCoordinates(addr map[string]any) {
	geo, ok := addr["geographicCoordinates"].(map[string]any)
	if !ok {
		return
	}
	for _, k := range []string{"longitude", "latitude", "altitude"} {
		if _, ok := geo[k]; !ok {
			geo[k] = float64(0)
		}
	}
}

// FromPayload flattens an API record into the codec's record shape for
// download. Keys the file format does not know are collected and returned
// instead of failing, so new API fields never break a download.
func FromPayload(payload map[string]any) (partnerfile.Record, []string) {
	rec := partnerfile.NewRecord(FormatValue(payload["externalId"]))
	var unknown []string
	flatten(payload, "", &rec, &unknown)
	sort.Strings(unknown)
	return rec, unknown
}

func flatten(obj map[string]any, prefix string, rec *partnerfile.Record, unknown *[]string) {
	for key, value := range obj {
		full := prefix + key
		switch {
		case full == "externalId":
			// already on the record
		case full == "nameParts":
			for i, part := range asList(value) {
				rec.SetNamePart(i, FormatValue(part))
			}
		case full == "identifiers":
			for _, item := range asList(value) {
				rec.Append("identifiers", objectElement(item))
			}
		case full == "roles":
			for _, item := range asList(value) {
				rec.Append("roles", partnerfile.Element{Value: FormatValue(item)})
			}
		case full == "states" || strings.HasSuffix(full, ".states"):
			for _, item := range asList(value) {
				rec.Append(full, objectElement(item))
			}
		default:
			switch v := value.(type) {
			case map[string]any:
				flatten(v, full+".", rec, unknown)
			case []any:
				// the format cannot represent unknown arrays; report, don't guess
				*unknown = append(*unknown, full)
			default:
				if _, ok := pathSpecs[full]; ok {
					rec.SetScalar(full, FormatValue(value))
				} else if value != nil {
					*unknown = append(*unknown, full)
				}
			}
		}
	}
}

func objectElement(item any) partnerfile.Element {
	fields := map[string]string{}
	if m, ok := item.(map[string]any); ok {
		for k, v := range m {
			if s := FormatValue(v); s != "" {
				fields[k] = s
			}
		}
	}
	return partnerfile.Element{Fields: fields}
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}
