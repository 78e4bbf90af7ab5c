package tokenizer

import (
	"reflect"
	"testing"

	"github.com/easyops/kgpath/pkg/kg"
)

func newTestTokenizer(opts ...Option) *MarkerTokenizer {
	opts = append([]Option{WithSpecialBaseID(1000)}, opts...)
	tk := NewMarkerTokenizer(NewWhitespaceEncoder(), opts...)
	tk.AddSpecialTokens(kg.Markers(2))
	return tk
}

func TestMarkerTokenizer_SpecialIDs(t *testing.T) {
	tk := newTestTokenizer()

	if tk.PadID() != 1000 {
		t.Fatalf("expected PadID 1000, got %d", tk.PadID())
	}
	if tk.EOSID() != 1001 {
		t.Fatalf("expected EOSID 1001, got %d", tk.EOSID())
	}
	if id, ok := tk.SpecialID("[HEAD]"); !ok || id != 1002 {
		t.Fatalf("expected [HEAD] id 1002, got %d (%v)", id, ok)
	}
	if n := len(tk.SpecialTokens()); n != 20 {
		t.Fatalf("expected 20 special tokens, got %d", n)
	}
	if added := tk.AddSpecialTokens(kg.Markers(2)); added != 0 {
		t.Fatalf("expected re-registration to add nothing, got %d", added)
	}
}

func TestMarkerTokenizer_MarkersAreAtomic(t *testing.T) {
	tk := newTestTokenizer()

	text := "[HEAD]A[Int1_1][Int1_2]r[Int2_1][Int2_2]B[TAIL]"
	got := tk.Encode(text)
	want := []int{1002, 0, 1004, 1005, 1, 1008, 1009, 2, 1003, 1001}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode() = %v, want %v", got, want)
	}
	if tk.Count(text) != len(want) {
		t.Fatalf("Count() = %d, want %d", tk.Count(text), len(want))
	}
}

func TestMarkerTokenizer_Decode(t *testing.T) {
	tk := newTestTokenizer()
	ids := tk.Encode("[HEAD]A[Int1_1][Int1_2]r[Int2_1][Int2_2]B[TAIL]")

	if got := tk.Decode(ids, false); got != "[HEAD]A[Int1_1][Int1_2]r[Int2_1][Int2_2]B[TAIL]</s>" {
		t.Fatalf("Decode(keep) = %q", got)
	}
	if got := tk.Decode(ids, true); got != "ArB" {
		t.Fatalf("Decode(skip) = %q", got)
	}
}

func TestMarkerTokenizer_EncodeTruncated(t *testing.T) {
	tk := newTestTokenizer()

	got := tk.EncodeTruncated("a b c d", 3)
	if !reflect.DeepEqual(got, []int{0, 1, 1001}) {
		t.Fatalf("EncodeTruncated() = %v", got)
	}

	got = tk.EncodeTruncated("a b", 10)
	if !reflect.DeepEqual(got, []int{0, 1, 1001}) {
		t.Fatalf("EncodeTruncated() without truncation = %v", got)
	}
}

func TestMarkerTokenizer_NoEOS(t *testing.T) {
	tk := newTestTokenizer(WithAppendEOS(false))

	if got := tk.Encode("a b"); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("Encode() = %v", got)
	}
	if got := tk.EncodeTruncated("a b c", 2); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("EncodeTruncated() = %v", got)
	}
	if got := tk.Encode(""); len(got) != 0 {
		t.Fatalf("expected empty encoding, got %v", got)
	}
}

func TestMarkerTokenizer_SeparatorIsAtomic(t *testing.T) {
	tk := newTestTokenizer(WithAppendEOS(false))

	got := tk.Encode("know</s>dialogue: hi")
	want := []int{0, 1001, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode() = %v, want %v", got, want)
	}
}

func TestNew_Whitespace(t *testing.T) {
	tk, err := New(Config{Encoding: EncodingWhitespace})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tk.PadID() != DefaultSpecialBaseID {
		t.Fatalf("expected default special base id, got %d", tk.PadID())
	}
}

func TestWhitespaceEncoder(t *testing.T) {
	e := NewWhitespaceEncoder()

	ids := e.Encode("a b a\tc")
	if !reflect.DeepEqual(ids, []int{0, 1, 0, 2}) {
		t.Fatalf("Encode() = %v", ids)
	}
	if e.Size() != 3 {
		t.Fatalf("expected vocabulary size 3, got %d", e.Size())
	}
	if got := e.Decode([]int{2, 0, 99}); got != "c a" {
		t.Fatalf("Decode() = %q", got)
	}
}
