package qname

import "testing"

func TestJoin(t *testing.T) {
	if got := Join("", "a"); got != "a" {
		t.Errorf("Join(\"\", a) = %q, want a", got)
	}
	if got := Join("a", "b"); got != "a.b" {
		t.Errorf("Join(a, b) = %q, want a.b", got)
	}
}

func TestSplit(t *testing.T) {
	cases := []struct {
		path, head, rest string
	}{
		{"a.b.c", "a", "b.c"},
		{"a", "a", ""},
		{"", "", ""},
	}
	for _, c := range cases {
		head, rest := Split(c.path)
		if head != c.head || rest != c.rest {
			t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", c.path, head, rest, c.head, c.rest)
		}
	}
}

func TestSegments(t *testing.T) {
	got := Name("a.b.c").Segments()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Segments() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Segments()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
