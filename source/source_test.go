package source

import (
	"bytes"
	"testing"
)

func TestSniff(t *testing.T) {
	cases := map[string]rune{
		"a;b;c\nx;y;z":        ';',
		"a,b,c\n":             ',',
		"a\tb\n":              '\t',
		"a;b,c\n":             ';', // semicolon wins
		"\xef\xbb\xbfa,b\n":   ',',
		"externalId;name1\r\n": ';',
	}
	for in, want := range cases {
		got, err := Sniff([]byte(in))
		if err != nil {
			t.Fatalf("%q: sniff err: %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: delimiter = %q, want %q", in, got, want)
		}
	}
	if _, err := Sniff([]byte("nodelimiter\nx,y\n")); err != ErrNoDelimiter {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestReadAll_BOMAndCRLF(t *testing.T) {
	rows, err := ReadAll([]byte("\xef\xbb\xbfa;b\r\n1;2\r\n"), ';')
	if err != nil {
		t.Fatalf("read err: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "a" || rows[1][1] != "2" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestReadAll_RaggedRowsSurvive(t *testing.T) {
	// width enforcement happens in the codec, not here
	rows, err := ReadAll([]byte("a;b\n1;2;3\n"), ';')
	if err != nil {
		t.Fatalf("read err: %v", err)
	}
	if len(rows[1]) != 3 {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestWriteAll(t *testing.T) {
	out, err := WriteAll([][]string{{"a", "b"}, {"1", "2"}}, ';')
	if err != nil {
		t.Fatalf("write err: %v", err)
	}
	if string(out) != "a;b\n1;2\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestWriteAllBOM(t *testing.T) {
	out, err := WriteAllBOM([][]string{{"a"}}, ';')
	if err != nil {
		t.Fatalf("write err: %v", err)
	}
	if !bytes.HasPrefix(out, BOM) {
		t.Fatalf("missing BOM: %q", out)
	}
}
