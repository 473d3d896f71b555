package fileformat

import (
	"testing"

	"github.com/bpdmkit/partnerfile"
)

func TestExternalIDs(t *testing.T) {
	text := "externalId;name1;whatever\nA;Acme;1\nA;;2\nB;Bravo;3\n"
	ids, err := ExternalIDs([]byte(text))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ids) != 2 || ids[0] != "A" || ids[1] != "B" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestExternalIDs_ColumnAnywhere(t *testing.T) {
	ids, err := ExternalIDs([]byte("foo,externalId\nx,A\n"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ids) != 1 || ids[0] != "A" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestExternalIDs_MissingColumn(t *testing.T) {
	_, err := ExternalIDs([]byte("foo;bar\nx;y\n"))
	iss, ok := partnerfile.AsIssues(err)
	if !ok || iss[0].Code != partnerfile.CodeMissingColumn {
		t.Fatalf("unexpected err: %v", err)
	}
}
