package clock

import (
	"testing"
	"time"
)

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	t.Parallel()
	f := NewFake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))

	ch := f.After(10 * time.Minute)
	select {
	case <-ch:
		t.Fatal("waiter fired before advance")
	default:
	}

	f.Advance(9 * time.Minute)
	select {
	case <-ch:
		t.Fatal("waiter fired early")
	default:
	}

	f.Advance(time.Minute)
	select {
	case got := <-ch:
		want := time.Date(2026, 1, 1, 9, 10, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Fatalf("fired at %v, want %v", got, want)
		}
	default:
		t.Fatal("waiter did not fire at its deadline")
	}
}

func TestFakeAfterNonPositiveIsImmediate(t *testing.T) {
	t.Parallel()
	f := NewFake(time.Unix(0, 0))
	select {
	case <-f.After(0):
	default:
		t.Fatal("zero-duration wait should be ready immediately")
	}
	select {
	case <-f.After(-time.Second):
	default:
		t.Fatal("negative wait should be ready immediately")
	}
}
