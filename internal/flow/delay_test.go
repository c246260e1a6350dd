package flow

import (
	"testing"
	"time"
)

func TestUniformDelay(t *testing.T) {
	for kind, w := range DefaultWindows {
		for i := 0; i < 500; i++ {
			d := UniformDelay{}.Next(w)
			if d < w.Min || d >= w.Max {
				t.Fatalf("%s: delay %v outside [%v, %v)", kind, d, w.Min, w.Max)
			}
		}
	}
}

func TestUniformDelay_DegenerateWindow(t *testing.T) {
	w := Window{Min: time.Second, Max: time.Second}
	if d := (UniformDelay{}).Next(w); d != time.Second {
		t.Errorf("expected %v, got %v", time.Second, d)
	}

	inverted := Window{Min: 2 * time.Second, Max: time.Second}
	if d := (UniformDelay{}).Next(inverted); d != 2*time.Second {
		t.Errorf("expected %v, got %v", 2*time.Second, d)
	}
}

func TestFixedDelay(t *testing.T) {
	d := FixedDelay(42 * time.Millisecond)
	if got := d.Next(DefaultWindows[KindIdeas]); got != 42*time.Millisecond {
		t.Errorf("expected 42ms, got %v", got)
	}
}

func TestDelayFunc(t *testing.T) {
	f := DelayFunc(func(w Window) time.Duration { return w.Max })
	if got := f.Next(DefaultWindows[KindVisual]); got != 1300*time.Millisecond {
		t.Errorf("expected 1.3s, got %v", got)
	}
}

func TestDefaultWindows(t *testing.T) {
	want := map[Kind][2]time.Duration{
		KindIdeas:    {600 * time.Millisecond, 1400 * time.Millisecond},
		KindVisual:   {700 * time.Millisecond, 1300 * time.Millisecond},
		KindResearch: {800 * time.Millisecond, 1300 * time.Millisecond},
	}
	for kind, bounds := range want {
		w := DefaultWindows[kind]
		if w.Min != bounds[0] || w.Max != bounds[1] {
			t.Errorf("%s: got %v-%v, want %v-%v", kind, w.Min, w.Max, bounds[0], bounds[1])
		}
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if Kind("tiki").Valid() {
		t.Error("unknown kind reported valid")
	}
}
