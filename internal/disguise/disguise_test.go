package disguise

import (
	"testing"
	"time"
)

// seqRand returns values from a fixed script, cycling when exhausted.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var noon = fixedClock(time.Date(2024, 3, 9, 12, 30, 5, 0, time.UTC))

func TestLinesPerContentLine(t *testing.T) {
	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 1},
		{0.04, 1},
		{0.2, 2},
		{0.3, 3},
		{0.6, 6},
		{1, 10},
		{1.7, 10},
		{-0.5, 1},
	}
	for _, tt := range tests {
		if got := LinesPerContentLine(tt.ratio); got != tt.want {
			t.Errorf("LinesPerContentLine(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}

func TestMixExample(t *testing.T) {
	m := NewMixer(&seqRand{vals: []int{0}}, noon)
	got := m.Mix([]string{"a", "b"}, 0, 0.3)
	if len(got) != 8 {
		t.Fatalf("got %d lines, want 8", len(got))
	}
	for i, l := range got {
		wantGenuine := i == 3 || i == 7
		if l.Genuine != wantGenuine {
			t.Errorf("line %d genuine = %v, want %v", i, l.Genuine, wantGenuine)
		}
	}
	if got[3].Text != "a" || got[7].Text != "b" {
		t.Errorf("genuine text = %q, %q", got[3].Text, got[7].Text)
	}
	want := "[2024-03-09 12:30:05] INFO DatabaseManager: initialized successfully"
	if got[0].Text != want {
		t.Errorf("synthetic = %q, want %q", got[0].Text, want)
	}
}

func TestMixLineCountLaw(t *testing.T) {
	content := []string{"one", "two", "three", "four", "five"}
	for _, ratio := range []float64{0, 0.1, 0.25, 0.5, 0.99, 1} {
		m := New(42)
		got := m.Mix(content, 10, ratio)
		k := LinesPerContentLine(ratio)
		if len(got) != len(content)*(k+1) {
			t.Errorf("ratio %v: got %d lines, want %d", ratio, len(got), len(content)*(k+1))
		}
		genuine := 0
		for i, l := range got {
			if (i+1)%(k+1) == 0 {
				if !l.Genuine {
					t.Errorf("ratio %v: line %d should be genuine", ratio, i)
				}
				genuine++
			} else if l.Genuine {
				t.Errorf("ratio %v: line %d should be synthetic", ratio, i)
			}
		}
		if genuine != len(content) {
			t.Errorf("ratio %v: %d genuine lines, want %d", ratio, genuine, len(content))
		}
	}
}

func TestMixLineNumberRecovery(t *testing.T) {
	content := []string{"alpha", "beta", "gamma"}
	for _, ratio := range []float64{0, 0.3, 1} {
		got := Genuine(New(7).Mix(content, 120, ratio))
		for i, l := range got {
			if l.LineNumber != 120+i {
				t.Errorf("ratio %v: genuine %d maps to %d, want %d", ratio, i, l.LineNumber, 120+i)
			}
			if l.Text != content[i] {
				t.Errorf("ratio %v: genuine %d text %q, want %q", ratio, i, l.Text, content[i])
			}
		}
	}
}

func TestMixDeterministic(t *testing.T) {
	a := NewMixer(&seqRand{vals: []int{3, 1, 4, 1, 5, 9, 2, 6}}, noon).Mix([]string{"x", "y"}, 0, 0.2)
	b := NewMixer(&seqRand{vals: []int{3, 1, 4, 1, 5, 9, 2, 6}}, noon).Mix([]string{"x", "y"}, 0, 0.2)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("line %d differs: %q vs %q", i, a[i].Text, b[i].Text)
		}
	}
}

func TestSyntheticLooksLikeLog(t *testing.T) {
	m := New(1)
	for i := 0; i < 50; i++ {
		s := m.Synthetic()
		if !LooksLikeLog(s) {
			t.Fatalf("synthetic line %q does not look like a log line", s)
		}
		if Level(s) == "" {
			t.Fatalf("no level in %q", s)
		}
	}
}

func TestRender(t *testing.T) {
	m := New(1)
	plain := m.Render([]string{"a", "b"}, 4, Options{Enabled: false, Ratio: 0.5})
	if len(plain) != 2 || !plain[0].Genuine || plain[1].LineNumber != 5 {
		t.Errorf("disabled render = %+v", plain)
	}
	mixed := m.Render([]string{"a", "b"}, 4, Options{Enabled: true, Ratio: 0})
	if len(mixed) != 4 {
		t.Errorf("enabled render with ratio 0 = %d lines, want 4", len(mixed))
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"[2024-01-02 03:04:05] WARN CacheManager: cache updated", "WARN"},
		{"[2024-01-02 03:04:05] ERROR APIHandler: timeout detected", "ERROR"},
		{"[not a log] line", ""},
		{"plain text", ""},
	}
	for _, tt := range tests {
		if got := Level(tt.text); got != tt.want {
			t.Errorf("Level(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
