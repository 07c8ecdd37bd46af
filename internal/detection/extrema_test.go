package detection

import (
	"math"
	"testing"
)

func sameExtrema(a, b ExtremumList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFindExtrema(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		want ExtremumList
	}{
		{"empty", nil, nil},
		{"single", Profile{3}, nil},
		{"constant", Profile{5, 5, 5, 5}, nil},
		{"monotonic", Profile{0, 1, 2, 3}, nil},
		{"peak then valley", Profile{0, 1, 2, 1, 0, 1, 2}, ExtremumList{{2, Max}, {4, Min}}},
		{"even plateau", Profile{0, 1, 3, 3, 3, 3, 1, 0}, ExtremumList{{3, Max}}},
		{"odd plateau", Profile{0, 2, 2, 2, 0}, ExtremumList{{2, Max}}},
		{"flat valley", Profile{4, 1, 1, 4}, ExtremumList{{1, Min}}},
		{"shoulder", Profile{0, 1, 1, 1, 2}, nil},
		{"sub-tolerance wiggle", Profile{0, 1e-12, 0, -1e-12, 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindExtrema(tt.p); !sameExtrema(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindExtrema_Alternates(t *testing.T) {
	p := make(Profile, 400)
	for i := range p {
		x := float64(i)
		p[i] = math.Sin(x/7) + 0.4*math.Sin(x/3)
	}

	ext := FindExtrema(p)
	if len(ext) < 10 {
		t.Fatalf("expected many extrema, got %d", len(ext))
	}
	for i := 1; i < len(ext); i++ {
		if ext[i].Kind == ext[i-1].Kind {
			t.Fatalf("extrema %d and %d are both %v", i-1, i, ext[i].Kind)
		}
		if ext[i].Index <= ext[i-1].Index {
			t.Fatalf("indices not increasing at %d: %v", i, ext[i-1:i+1])
		}
	}
	for _, e := range ext {
		if e.Index <= 0 || e.Index >= len(p)-1 {
			t.Errorf("extremum at profile edge: %v", e)
		}
	}
}

func TestExtremumList_Indices(t *testing.T) {
	l := ExtremumList{{2, Max}, {5, Min}, {9, Max}}
	maxima := l.Indices(Max)
	minima := l.Indices(Min)
	if len(maxima) != 2 || maxima[0] != 2 || maxima[1] != 9 {
		t.Errorf("maxima: got %v", maxima)
	}
	if len(minima) != 1 || minima[0] != 5 {
		t.Errorf("minima: got %v", minima)
	}
}
