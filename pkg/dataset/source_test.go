package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	kgerrors "github.com/easyops/kgpath/pkg/core/errors"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLineSource(t *testing.T) {
	path := writeTemp(t, "lines.jsonl", "first\r\nsecond\nthird")

	src, err := OpenLineSource(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	if src.Len() != 3 {
		t.Fatalf("expected 3 lines, got %d", src.Len())
	}
	for n, want := range map[int]string{1: "first", 2: "second", 3: "third"} {
		got, err := src.Line(n)
		if err != nil {
			t.Fatalf("line %d: %v", n, err)
		}
		if string(got) != want {
			t.Fatalf("line %d: expected %q, got %q", n, want, got)
		}
	}
}

func TestLineSource_OutOfRange(t *testing.T) {
	src, err := OpenLineSource(writeTemp(t, "lines.jsonl", "a\nb\n"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	if src.Len() != 2 {
		t.Fatalf("expected trailing newline not to add a line, got %d", src.Len())
	}
	for _, n := range []int{0, -1, 3} {
		if _, err := src.Line(n); !errors.Is(err, kgerrors.ErrLineOutOfRange) {
			t.Fatalf("line %d: expected ErrLineOutOfRange, got %v", n, err)
		}
	}
}

func TestLineSource_Empty(t *testing.T) {
	src, err := OpenLineSource(writeTemp(t, "empty.jsonl", ""))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	if src.Len() != 0 {
		t.Fatalf("expected 0 lines, got %d", src.Len())
	}
}

func TestLineSource_LongLines(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	src, err := OpenLineSource(writeTemp(t, "long.jsonl", "short\n"+long+"\nend\n"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	if src.Len() != 3 {
		t.Fatalf("expected 3 lines, got %d", src.Len())
	}
	got, err := src.Line(2)
	if err != nil {
		t.Fatalf("line 2: %v", err)
	}
	if len(got) != len(long) {
		t.Fatalf("expected %d bytes, got %d", len(long), len(got))
	}
	if got, _ := src.Line(3); string(got) != "end" {
		t.Fatalf("expected 'end', got %q", got)
	}
}

func TestLineSource_ConcurrentReads(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString(strings.Repeat(string(rune('a'+i%26)), i+1))
		b.WriteByte('\n')
	}
	src, err := OpenLineSource(writeTemp(t, "many.jsonl", b.String()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer src.Close()

	var wg sync.WaitGroup
	for n := 1; n <= src.Len(); n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := src.Line(n)
			if err != nil || len(got) != n {
				t.Errorf("line %d: got %d bytes, err %v", n, len(got), err)
			}
		}(n)
	}
	wg.Wait()
}

func TestOpenLineSource_Missing(t *testing.T) {
	if _, err := OpenLineSource(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
