package shape

import (
	"errors"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		shape     []int
		core      int
		wantBatch []int
		wantCore  []int
	}{
		{[]int{}, 0, []int{}, []int{}},
		{[]int{3}, 0, []int{3}, []int{}},
		{[]int{3}, 1, []int{}, []int{3}},
		{[]int{1, 3}, 1, []int{1}, []int{3}},
		{[]int{2, 1, 1}, 2, []int{2}, []int{1, 1}},
		{[]int{}, 1, []int{}, []int{}},
	}

	for _, tt := range tests {
		batch, core := Split(tt.shape, tt.core)
		if !Equal(batch, tt.wantBatch) || !Equal(core, tt.wantCore) {
			t.Errorf("Split(%v, %d) = %v, %v, want %v, %v", tt.shape, tt.core, batch, core, tt.wantBatch, tt.wantCore)
		}
	}
}

func TestBroadcast(t *testing.T) {
	tests := []struct {
		a, b []int
		want []int
		err  bool
	}{
		{[]int{}, []int{}, []int{}, false},
		{[]int{}, []int{4}, []int{4}, false},
		{[]int{2, 1}, []int{3}, []int{2, 3}, false},
		{[]int{5, 1, 4}, []int{2, 1}, []int{5, 2, 4}, false},
		{[]int{2}, []int{3}, nil, true},
	}

	for _, tt := range tests {
		got, err := Broadcast(tt.a, tt.b)
		if tt.err {
			if !errors.Is(err, ErrIncompatible) {
				t.Errorf("Broadcast(%v, %v) error = %v, want ErrIncompatible", tt.a, tt.b, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Broadcast(%v, %v): %v", tt.a, tt.b, err)
		}
		if !Equal(got, tt.want) {
			t.Errorf("Broadcast(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIndex(t *testing.T) {
	out := []int{2, 3}

	// column vector broadcast along the last axis
	col := []int{2, 1}
	wantCol := []int{0, 0, 0, 1, 1, 1}
	// row vector broadcast along the first axis
	row := []int{3}
	wantRow := []int{0, 1, 2, 0, 1, 2}

	for flat := 0; flat < Size(out); flat++ {
		if got := Index(out, col, flat); got != wantCol[flat] {
			t.Errorf("Index(col, %d) = %d, want %d", flat, got, wantCol[flat])
		}
		if got := Index(out, row, flat); got != wantRow[flat] {
			t.Errorf("Index(row, %d) = %d, want %d", flat, got, wantRow[flat])
		}
		if got := Index(out, []int{}, flat); got != 0 {
			t.Errorf("Index(scalar, %d) = %d, want 0", flat, got)
		}
	}
}

func TestSize(t *testing.T) {
	if Size(nil) != 1 {
		t.Errorf("scalar size = %d, want 1", Size(nil))
	}
	if Size([]int{2, 3, 4}) != 24 {
		t.Errorf("Size = %d, want 24", Size([]int{2, 3, 4}))
	}
	if Size([]int{0, 3}) != 0 {
		t.Errorf("empty batch size = %d, want 0", Size([]int{0, 3}))
	}
}
