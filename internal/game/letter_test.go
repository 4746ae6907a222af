package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseLetter(t *testing.T) {
	for c := 'a'; c <= 'z'; c++ {
		l, err := ParseLetter(string(c))
		if err != nil {
			t.Fatalf("ParseLetter(%q): %v", c, err)
		}
		if l.String() != string(c) {
			t.Fatalf("round trip %q -> %q", c, l)
		}
	}

	for _, bad := range []string{"", "A", "Z", "ab", "1", " ", "é", "-"} {
		if _, err := ParseLetter(bad); !errors.Is(err, ErrInvalidLetter) {
			t.Fatalf("ParseLetter(%q) err = %v, want ErrInvalidLetter", bad, err)
		}
	}
}

func TestParseWordIsAtomic(t *testing.T) {
	got, err := ParseWord([]string{"s", "t", "a", "v", "e"})
	if err != nil {
		t.Fatalf("ParseWord: %v", err)
	}
	if Word(got) != "stave" {
		t.Fatalf("Word = %q, want stave", Word(got))
	}

	got, err = ParseWord([]string{"s", "t", "4", "v", "e"})
	if !errors.Is(err, ErrInvalidLetter) {
		t.Fatalf("err = %v, want ErrInvalidLetter", err)
	}
	if got != nil {
		t.Fatalf("partial result returned: %v", got)
	}
}

func TestParseTarget(t *testing.T) {
	if _, err := ParseTarget("12345"); !errors.Is(err, ErrInvalidLetter) {
		t.Fatalf("err = %v, want ErrInvalidLetter", err)
	}
	ls, err := ParseTarget("")
	if err != nil || len(ls) != 0 {
		t.Fatalf("ParseTarget(\"\") = %v, %v", ls, err)
	}
}

func TestLetterJSON(t *testing.T) {
	in := []Letter{'s', 't'}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["s","t"]` {
		t.Fatalf("marshal = %s", b)
	}

	var out []Letter
	if err := json.Unmarshal([]byte(`["a","b"]`), &out); err != nil {
		t.Fatal(err)
	}
	if Word(out) != "ab" {
		t.Fatalf("unmarshal = %q", Word(out))
	}
	if err := json.Unmarshal([]byte(`["A"]`), &out); err == nil {
		t.Fatal("expected error for upper-case letter")
	}
}
