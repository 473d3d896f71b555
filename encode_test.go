package partnerfile

import (
	"context"
	"testing"
)

func TestEncodeRecords_ContinuationOrdering(t *testing.T) {
	// states appears before identifiers in the header, so its continuation
	// rows come first regardless of insertion order on the record
	c := mustCodec(t, []string{"externalId", "states.type", "identifiers.type"}, Options{})
	rec := NewRecord("A")
	rec.Append("identifiers", Element{Fields: map[string]string{"type": "VAT"}})
	rec.Append("identifiers", Element{Fields: map[string]string{"type": "TAX"}})
	rec.Append("identifiers", Element{Fields: map[string]string{"type": "DUNS"}})
	rec.Append("states", Element{Fields: map[string]string{"type": "ACTIVE"}})
	rec.Append("states", Element{Fields: map[string]string{"type": "INACTIVE"}})

	rows, err := c.EncodeRecords(context.Background(), []Record{rec})
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	want := [][]string{
		{"A", "ACTIVE", "VAT"},
		{"A", "INACTIVE", ""},
		{"A", "", "TAX"},
		{"A", "", "DUNS"},
	}
	if len(rows) != len(want) {
		t.Fatalf("row count = %d", len(rows))
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Fatalf("row %d cell %d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestEncodeRecords_EmptyArraysAndMissingScalars(t *testing.T) {
	c := mustCodec(t, []string{"externalId", "name1", "legalEntity.legalName", "identifiers.type"}, Options{})
	rec := NewRecord("A")
	rows, err := c.EncodeRecords(context.Background(), []Record{rec})
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("row count = %d", len(rows))
	}
	for i, cell := range rows[0][1:] {
		if cell != "" {
			t.Fatalf("cell %d = %q, want empty", i+1, cell)
		}
	}
}

func TestEncodeRecords_MissingIdentifier(t *testing.T) {
	c := mustCodec(t, []string{"externalId", "name1"}, Options{})
	rec := NewRecord("")
	rows, err := c.EncodeRecords(context.Background(), []Record{rec})
	iss, ok := AsIssues(err)
	if !ok || iss[0].Code != CodeRequiredField {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows for invalid record: %v", rows)
	}
}

func TestEncodeRecords_NamePartGap(t *testing.T) {
	// an inner gap must encode back into the original columns
	c := mustCodec(t, []string{"externalId", "name1", "name2", "name3"}, Options{})
	rec := NewRecord("A")
	rec.SetNamePart(0, "First")
	rec.SetNamePart(2, "Third")
	rows, err := c.EncodeRecords(context.Background(), []Record{rec})
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if rows[0][1] != "First" || rows[0][2] != "" || rows[0][3] != "Third" {
		t.Fatalf("unexpected row: %v", rows[0])
	}
}
