package dataset

import (
	"errors"
	"testing"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/kg"
)

func TestParseRecord(t *testing.T) {
	line := `{"history": ["hi", "do you like the beatles?"],
		"ret_triplets": [[["The Beatles", "formed_in", "Liverpool"]], [{"head": "Liverpool", "relation": "located_in", "tail": "England"}]],
		"label": "yes, they are from Liverpool",
		"episode_id": 12, "turn_id": "3",
		"gold_triplets": [["The Beatles", "formed_in", "Liverpool"]]}`

	rec, err := ParseRecord([]byte(line), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rec.History) != 2 || rec.Label != "yes, they are from Liverpool" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.EpisodeID != "12" || rec.TurnID != "3" {
		t.Fatalf("expected ids rendered as text, got %q/%q", rec.EpisodeID, rec.TurnID)
	}
	if len(rec.RetTriplets) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(rec.RetTriplets))
	}
	want := kg.Triplet{Head: "Liverpool", Relation: "located_in", Tail: "England"}
	if rec.RetTriplets[1][0] != want {
		t.Fatalf("expected %v, got %v", want, rec.RetTriplets[1][0])
	}
	if len(rec.GoldTriplets) != 1 || rec.GoldTriplets[0][2] != "Liverpool" {
		t.Fatalf("unexpected gold triplets %v", rec.GoldTriplets)
	}
}

func TestParseRecord_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `{"history": [`},
		{"empty line", "   "},
		{"bad triplet", `{"history": ["a"], "ret_triplets": [[["a", "b"]]], "label": "x"}`},
		{"bad id", `{"history": ["a"], "label": "x", "episode_id": true}`},
		{"history not a list", `{"history": "a", "label": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord([]byte(tt.line), 7)
			if !errors.Is(err, kgerrors.ErrMalformedRecord) {
				t.Fatalf("expected ErrMalformedRecord, got %v", err)
			}
			var mre *kgerrors.MalformedRecordError
			if !errors.As(err, &mre) || mre.Line != 7 {
				t.Fatalf("expected line 7 in error, got %v", err)
			}
		})
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name  string
		rec   Record
		field string
	}{
		{"ok", Record{History: []string{"a"}, Label: "b"}, ""},
		{"no history", Record{Label: "b"}, "history"},
		{"no label", Record{History: []string{"a"}}, "label"},
		{"neither", Record{}, "history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate(4)
			if tt.field == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var eie *kgerrors.EmptyInputError
			if !errors.As(err, &eie) || eie.Field != tt.field || eie.Line != 4 {
				t.Fatalf("expected EmptyInputError on %s, got %v", tt.field, err)
			}
			if !errors.Is(err, kgerrors.ErrEmptyInput) {
				t.Fatalf("expected errors.Is ErrEmptyInput, got %v", err)
			}
		})
	}
}
