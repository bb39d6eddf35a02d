package random

import "testing"

func TestNew(t *testing.T) {
	t.Run("FixedSeedIsDeterministic", func(t *testing.T) {
		a, err := New(42)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		b, err := New(42)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		for i := 0; i < 10; i++ {
			if x, y := a.Int63(), b.Int63(); x != y {
				t.Fatalf("draw %d differs: %d vs %d", i, x, y)
			}
		}
	})

	t.Run("ZeroSeedUsesCrypto", func(t *testing.T) {
		r, err := New(0)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if r == nil {
			t.Fatal("expected a generator")
		}
	})
}
