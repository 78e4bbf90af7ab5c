package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
	"github.com/easyops/kgpath/pkg/kg"
	"github.com/easyops/kgpath/pkg/otel"
	"github.com/easyops/kgpath/pkg/tokenizer"
)

// charCounter 以字节数作为 Token 数，便于精确构造预算
var charCounter = tokenizer.CounterFunc(func(s string) int { return len(s) })

func samplePaths() []kg.RelationPath {
	return []kg.RelationPath{
		{{Head: "p0", Relation: "r", Tail: "a"}},
		{{Head: "p1", Relation: "r", Tail: "b"}},
		{{Head: "p2", Relation: "r", Tail: "c"}},
		{{Head: "p3", Relation: "r", Tail: "d"}},
		{{Head: "p4", Relation: "r", Tail: "e"}},
	}
}

func lin(p kg.RelationPath) string {
	return kg.Linearize(p, 2)
}

func TestAssemble_SkipsNewestAndIteratesInReverse(t *testing.T) {
	paths := samplePaths()

	got := Assemble(paths, 2, 1<<20, charCounter, T5Prefix, nil)
	want := T5Prefix + lin(paths[2]) + lin(paths[1]) + lin(paths[0])

	if got != want {
		t.Fatalf("Assemble() =\n  %s\nwant\n  %s", got, want)
	}
}

func TestAssemble_StopsAtFirstOverflow(t *testing.T) {
	paths := []kg.RelationPath{
		{{Head: "short", Relation: "r", Tail: "x"}},
		{{Head: "a-much-longer-head-entity", Relation: "some_long_relation", Tail: "a-much-longer-tail-entity"}},
		{{Head: "mid", Relation: "r", Tail: "y"}},
	}
	budget := len("k: ") + len(lin(paths[2])) + len(lin(paths[0]))

	got := Assemble(paths, 0, budget, charCounter, "k: ", nil)

	// 中间的长路径超出预算后不再尝试更短的 paths[0]
	if want := "k: " + lin(paths[2]); got != want {
		t.Fatalf("Assemble() = %s, want %s", got, want)
	}
}

func TestAssemble_ZeroBudgetReturnsPrefix(t *testing.T) {
	if got := Assemble(samplePaths(), 0, 0, charCounter, T5Prefix, nil); got != T5Prefix {
		t.Fatalf("expected prefix only, got %q", got)
	}
}

func TestAssemble_EmptyPathsReturnsPrefix(t *testing.T) {
	if got := Assemble(nil, 2, 100, charCounter, "p: ", nil); got != "p: " {
		t.Fatalf("expected prefix only, got %q", got)
	}
}

func TestAssemble_NeverExceedsBudget(t *testing.T) {
	paths := samplePaths()
	full := Assemble(paths, 0, 1<<20, charCounter, "", nil)

	for budget := 0; budget <= len(full)+5; budget++ {
		got := Assemble(paths, 0, budget, charCounter, "", nil)
		if got != "" && charCounter.Count(got) > budget {
			t.Fatalf("budget %d exceeded: %d", budget, charCounter.Count(got))
		}
		if !strings.HasPrefix(full, got) {
			t.Fatalf("budget %d: result is not a prefix of the full assembly", budget)
		}
		if got != "" && !strings.HasSuffix(got, kg.TailMarker) {
			t.Fatalf("budget %d: chain truncated: %s", budget, got)
		}
	}
}

func TestAssemble_OrderSensitive(t *testing.T) {
	paths := samplePaths()
	reversed := make([]kg.RelationPath, len(paths))
	for i := range paths {
		reversed[len(paths)-1-i] = paths[i]
	}
	budget := len(lin(paths[0])) * 2

	a := Assemble(paths, 0, budget, charCounter, "", nil)
	b := Assemble(reversed, 0, budget, charCounter, "", nil)

	if a == b {
		t.Fatalf("expected different selections, both %s", a)
	}
	if a != lin(paths[4])+lin(paths[3]) {
		t.Fatalf("unexpected selection %s", a)
	}
	if b != lin(paths[0])+lin(paths[1]) {
		t.Fatalf("unexpected selection %s", b)
	}
}

func TestAssemble_WithMarkerTokenizer(t *testing.T) {
	tk := tokenizer.NewMarkerTokenizer(tokenizer.NewWhitespaceEncoder(), tokenizer.WithSpecialBaseID(500))
	tk.AddSpecialTokens(kg.Markers(2))

	paths := []kg.RelationPath{{{Head: "A", Relation: "r", Tail: "B"}}, {{Head: "C", Relation: "s", Tail: "D"}}}
	// 每条单三元组链: [HEAD] A [Int1_1] [Int1_2] r [Int2_1] [Int2_2] B [TAIL] = 9，加 </s> 与前缀词
	one := tk.Count("knowledge: " + lin(paths[1]))

	got := Assemble(paths, 0, one, tk, T5Prefix, nil)
	if got != T5Prefix+lin(paths[1]) {
		t.Fatalf("unexpected assembly %s", got)
	}
	if tk.Count(got) > one {
		t.Fatalf("budget exceeded")
	}
}

func TestAssembler_Detailed(t *testing.T) {
	metrics := otel.NewRecorder()
	a, err := NewAssembler(Config{Budget: 1 << 20, SkipCount: 2, NumHops: 2, Prefix: T5Prefix}, charCounter,
		WithMetrics(metrics))
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}

	res, err := a.AssembleDetailed(context.Background(), samplePaths())
	if err != nil {
		t.Fatalf("AssembleDetailed() error = %v", err)
	}
	if res.Included != 3 || res.Skipped != 2 || res.Overflowed {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Tokens != len(res.Text) {
		t.Fatalf("expected Tokens %d, got %d", len(res.Text), res.Tokens)
	}
	if got := metrics.Count(otel.MetricPathsIncluded); got != 3 {
		t.Fatalf("expected %s = 3, got %d", otel.MetricPathsIncluded, got)
	}
}

func TestAssembler_Overflow(t *testing.T) {
	metrics := otel.NewRecorder()
	a, err := NewAssembler(Config{Budget: 0, NumHops: 2, Prefix: "x"}, charCounter, WithMetrics(metrics))
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}

	res, err := a.AssembleDetailed(context.Background(), samplePaths())
	if err != nil {
		t.Fatalf("AssembleDetailed() error = %v", err)
	}
	if res.Text != "x" || !res.Overflowed || res.Included != 0 || res.Tokens != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := metrics.Count(otel.MetricPathsOverflow); got != 1 {
		t.Fatalf("expected overflow counter 1, got %d", got)
	}
}

func TestAssembler_Canceled(t *testing.T) {
	a, err := NewAssembler(DefaultConfig(), charCounter)
	if err != nil {
		t.Fatalf("NewAssembler() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Assemble(ctx, samplePaths())
	if !errors.Is(err, kgerrors.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}
}

func TestNewAssembler_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative budget", Config{Budget: -1, NumHops: 2}},
		{"negative skip", Config{SkipCount: -1, NumHops: 2}},
		{"zero hops", Config{NumHops: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAssembler(tt.cfg, charCounter); !errors.Is(err, kgerrors.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := NewAssembler(DefaultConfig(), nil); !errors.Is(err, kgerrors.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for nil counter, got %v", err)
	}
}
