package ringbuf

import (
	"reflect"
	"testing"
)

func TestRing_PushWithinCapacity(t *testing.T) {
	r := New[int](3)
	r.Push(1)
	r.Push(2)

	if r.Len() != 2 {
		t.Fatalf("Expected Len=2, got %d", r.Len())
	}
	if got := r.Slice(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}
}

func TestRing_EvictsOldest(t *testing.T) {
	r := New[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	if r.Len() != 3 {
		t.Fatalf("Expected Len=3, got %d", r.Len())
	}
	if got := r.Slice(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Errorf("Expected [3 4 5], got %v", got)
	}
	if r.At(0) != 3 {
		t.Errorf("Expected oldest=3, got %d", r.At(0))
	}
}

func TestRing_FirstLast(t *testing.T) {
	r := New[int](4)
	for i := 1; i <= 6; i++ {
		r.Push(i)
	}

	tests := []struct {
		name string
		got  []int
		want []int
	}{
		{"first two", r.First(2), []int{3, 4}},
		{"last two", r.Last(2), []int{5, 6}},
		{"last capped", r.Last(10), []int{3, 4, 5, 6}},
		{"first zero", r.First(0), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !reflect.DeepEqual(tc.got, tc.want) {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestRing_Reset(t *testing.T) {
	r := New[string](2)
	r.Push("a")
	r.Push("b")
	r.Push("c")
	r.Reset()

	if r.Len() != 0 {
		t.Errorf("Expected empty ring after Reset, got %d", r.Len())
	}
	r.Push("d")
	if got := r.Slice(); !reflect.DeepEqual(got, []string{"d"}) {
		t.Errorf("Expected [d], got %v", got)
	}
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := New[int](0)
	if r.Cap() != 1 {
		t.Errorf("Expected Cap=1, got %d", r.Cap())
	}
}
