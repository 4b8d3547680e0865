package vocab

import (
	"reflect"
	"testing"
)

func TestContains(t *testing.T) {
	tr := New("ab", "abc", "b")
	if !tr.Contains("ab") || !tr.Contains("abc") {
		t.Fatalf("expected ab and abc to be members")
	}
	if tr.Contains("a") {
		t.Fatalf("a should not be a member")
	}
}

func TestPrefixRange(t *testing.T) {
	tr := New("ab", "abc", "abd", "b")
	got := tr.PrefixRange("ab")
	want := []string{"ab", "abc", "abd"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("PrefixRange(ab) = %v, want %v", got, want)
	}
	if got := tr.PrefixRange("z"); len(got) != 0 {
		t.Fatalf("PrefixRange(z) = %v, want empty", got)
	}
}

func TestDedupeOnConstruction(t *testing.T) {
	tr := New("a", "a", "b")
	if tr.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tr.Len())
	}
}

func TestNilTrie(t *testing.T) {
	var tr *Trie
	if tr.Contains("x") || tr.Len() != 0 || tr.PrefixRange("x") != nil {
		t.Fatalf("nil trie should behave as empty")
	}
}
