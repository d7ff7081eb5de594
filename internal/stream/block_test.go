package stream

import (
	"errors"
	"io"
	"strings"
	"testing"

	eng "github.com/reoring/cifdict/internal/engine"
)

func TestBlockSource_SplitsBlocks(t *testing.T) {
	src := eng.NewCIFSource(strings.NewReader("_a.b 1\ndata_x\n_a.b 2\n_a.c 3\ndata_y\n"))

	var counts []int
	var names []string
	for {
		bs := NewBlockSource(src)
		n := 0
		for {
			_, err := bs.NextEvent()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			n++
		}
		counts = append(counts, n)
		next, ok := bs.Boundary()
		if !ok {
			break
		}
		names = append(names, next.Name)
	}

	if want := []int{1, 2, 0}; len(counts) != len(want) || counts[0] != 1 || counts[1] != 2 || counts[2] != 0 {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	if len(names) != 2 || names[0] != "x" || names[1] != "y" {
		t.Fatalf("names = %v", names)
	}
}

func TestBlockSource_StaysDone(t *testing.T) {
	bs := NewBlockSource(eng.NewCIFSource(strings.NewReader("")))
	for i := 0; i < 2; i++ {
		if _, err := bs.NextEvent(); !errors.Is(err, io.EOF) {
			t.Fatalf("call %d: expected io.EOF, got %v", i, err)
		}
	}
	if _, ok := bs.Boundary(); ok {
		t.Fatalf("expected no boundary at end of stream")
	}
}
