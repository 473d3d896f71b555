package partnerfile

import "testing"

func TestBuildSchema_Basic(t *testing.T) {
	s, err := BuildSchema([]string{"externalId", "name1", "identifiers.type", "identifiers.value", "roles"})
	if err != nil {
		t.Fatalf("schema err: %v", err)
	}
	if len(s.Columns) != 5 {
		t.Fatalf("column count = %d", len(s.Columns))
	}
	if got := s.Columns[2].Root; got != "identifiers" {
		t.Fatalf("root = %q", got)
	}
	if got := s.Columns[2].Sub; got != "type" {
		t.Fatalf("sub = %q", got)
	}
	if got := s.Columns[4].Sub; got != "" {
		t.Fatalf("roles sub = %q", got)
	}
	if !s.Columns[0].Scalar() || s.Columns[2].Scalar() {
		t.Fatalf("scalar classification wrong")
	}
	if got := s.Index("name1"); got != 1 {
		t.Fatalf("index = %d", got)
	}
}

func TestBuildSchema_EmptyHeader(t *testing.T) {
	_, err := BuildSchema(nil)
	iss, ok := AsIssues(err)
	if !ok || iss[0].Code != CodeEmptyHeader {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestBuildSchema_EmptyColumn(t *testing.T) {
	_, err := BuildSchema([]string{"externalId", "  "})
	iss, ok := AsIssues(err)
	if !ok || iss[0].Code != CodeEmptyColumn {
		t.Fatalf("unexpected err: %v", err)
	}
	if iss[0].Kind() != KindSchema {
		t.Fatalf("kind = %v", iss[0].Kind())
	}
}

func TestBuildSchema_DuplicateColumn(t *testing.T) {
	// different spellings, same field path
	_, err := BuildSchema([]string{"address.physical.city", "address.physicalPostalAddress.city"})
	iss, ok := AsIssues(err)
	if !ok || iss[0].Code != CodeDuplicateColumn {
		t.Fatalf("unexpected err: %v", err)
	}
	if iss[0].Column != "address.physicalPostalAddress.city" {
		t.Fatalf("column = %q", iss[0].Column)
	}
}

func TestSchema_RootOrder(t *testing.T) {
	s, err := BuildSchema([]string{"externalId", "states.type", "identifiers.type", "identifiers.value", "states.validFrom"})
	if err != nil {
		t.Fatalf("schema err: %v", err)
	}
	order := s.rootOrder()
	if len(order) != 2 || order[0] != "states" || order[1] != "identifiers" {
		t.Fatalf("root order = %v", order)
	}
}

func TestBuildSchema_HeaderRoundTrip(t *testing.T) {
	header := []string{"externalId", "name1", "address.physical.city", "legalEntity.states.type"}
	s, err := BuildSchema(header)
	if err != nil {
		t.Fatalf("schema err: %v", err)
	}
	for i, c := range s.Columns {
		if got := ToName(c.Path); got != header[i] {
			t.Fatalf("toName(toPath) mismatch: %q != %q", got, header[i])
		}
	}
}
