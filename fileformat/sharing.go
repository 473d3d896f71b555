package fileformat

import (
	"strings"

	"github.com/bpdmkit/partnerfile"
	"github.com/bpdmkit/partnerfile/source"
)

// SharingStateHeader is the header of the CSV a sharing-state check returns.
var SharingStateHeader = []string{
	"externalId", "businessPartnerType", "sharingStateType",
	"sharingErrorCode", "sharingErrorMessage", "bpn",
	"sharingProcessStarted", "taskId",
}

// ExternalIDs extracts the external identifiers from a CSV for a
// sharing-state check. Only the externalId column is required; all other
// columns are ignored. Consecutive rows with the same identifier count once,
// matching how the upload format repeats the identifier on continuation
// rows.
func ExternalIDs(data []byte) ([]string, error) {
	delim, err := source.Sniff(data)
	if err != nil {
		return nil, partnerfile.Issues{{Code: partnerfile.CodeNoDelimiter, Line: 1, Message: err.Error(), Cause: err}}
	}
	rows, err := source.ReadAll(data, delim)
	if err != nil {
		return nil, partnerfile.Issues{{Code: partnerfile.CodeRowWidth, Message: "malformed delimited text", Cause: err}}
	}
	if len(rows) == 0 {
		return nil, partnerfile.Issues{{Code: partnerfile.CodeEmptyHeader, Line: 1, Message: "file has no header line"}}
	}
	idIdx := -1
	for i, name := range rows[0] {
		if strings.TrimSpace(name) == "externalId" {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		return nil, partnerfile.Issues{{Code: partnerfile.CodeMissingColumn, Line: 1,
			Column: "externalId", Message: "identifier column is missing"}}
	}
	ids := []string{}
	prev := ""
	for _, row := range rows[1:] {
		if idIdx >= len(row) {
			continue
		}
		id := strings.TrimSpace(row[idIdx])
		if id == "" || id == prev {
			continue
		}
		ids = append(ids, id)
		prev = id
	}
	return ids, nil
}
