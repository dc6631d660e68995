package symtrack

import "testing"

func TestDecideQPSK(t *testing.T) {
	cases := []struct {
		in   complex128
		want complex128
	}{
		{0.3 + 0.9i, 1 + 1i},
		{0.3 - 0.9i, 1 - 1i},
		{-2.5 + 0.1i, -1 + 1i},
		{-0.01 - 0.01i, -1 - 1i},
		{1 + 1i, 1 + 1i},
		{0 + 0i, -1 - 1i}, // zero decides -1 on both axes
	}
	for _, c := range cases {
		if got := DecideQPSK(c.in); got != c.want {
			t.Errorf("DecideQPSK(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestConstellationDecideMatchesSlicer(t *testing.T) {
	samples := []complex128{
		0.7 + 0.2i, -0.4 + 1.3i, -1.1 - 0.9i, 2 - 0.5i,
		0.01 + 0.01i, -0.01 + 0.99i,
	}
	for _, x := range samples {
		want := DecideQPSK(x)
		if got := QPSK.Decide(x); got != want {
			t.Errorf("QPSK.Decide(%v) = %v, want %v", x, got, want)
		}
	}
}
