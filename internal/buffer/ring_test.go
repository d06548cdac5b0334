package buffer

import "testing"

func TestRingOverwritesOldest(t *testing.T) {
	ring := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		ring.Add(i)
	}

	got := ring.List()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if ring.Len() != 3 || ring.Cap() != 3 {
		t.Fatalf("expected len=cap=3, got len=%d cap=%d", ring.Len(), ring.Cap())
	}
}

func TestRingLast(t *testing.T) {
	ring := NewRing[string](4)
	ring.Add("a")
	ring.Add("b")
	ring.Add("c")

	got := ring.Last(2)
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("expected [b c], got %v", got)
	}
	if all := ring.Last(10); len(all) != 3 {
		t.Fatalf("expected all 3 entries, got %v", all)
	}
}

func TestRingEmpty(t *testing.T) {
	var ring *Ring[int]
	if ring.List() != nil || ring.Len() != 0 {
		t.Fatalf("expected nil ring to be empty")
	}
	if NewRing[int](0).Cap() != 1 {
		t.Fatalf("expected minimum capacity of 1")
	}
}
