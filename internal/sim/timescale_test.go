package sim

import (
	"math"
	"sync"
	"testing"
)

func TestTimeScale_Set(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"real time", 1, 1},
		{"fractional", 0.25, 0.25},
		{"negative clamps to zero", -3, 0},
		{"above max clamps", 1e6, MaxTimeScale},
		{"positive infinity", math.Inf(1), MaxTimeScale},
		{"negative infinity", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTimeScale(1)
			if got := ts.Set(tt.in); got != tt.want {
				t.Errorf("Set(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got := ts.Load(); got != tt.want {
				t.Errorf("Load() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeScale_IgnoresNaN(t *testing.T) {
	ts := NewTimeScale(3)
	if got := ts.Set(math.NaN()); got != 3 {
		t.Errorf("Set(NaN) = %v, want 3", got)
	}
	if got := ts.Adjust(math.NaN()); got != 3 {
		t.Errorf("Adjust(NaN) = %v, want 3", got)
	}
}

func TestTimeScale_Adjust(t *testing.T) {
	ts := NewTimeScale(1)

	if got := ts.Adjust(ScaleStepFine); got != 1.5 {
		t.Errorf("fine step up = %v, want 1.5", got)
	}
	if got := ts.Adjust(ScaleStepCoarse); got != 6.5 {
		t.Errorf("coarse step up = %v, want 6.5", got)
	}
	if got := ts.Adjust(-ScaleStepHuge); got != 0 {
		t.Errorf("huge step down = %v, want 0", got)
	}
	for i := 0; i < 20; i++ {
		ts.Adjust(ScaleStepHuge)
	}
	if got := ts.Load(); got != MaxTimeScale {
		t.Errorf("repeated step up = %v, want %v", got, MaxTimeScale)
	}
}

func TestTimeScale_ConcurrentAdjust(t *testing.T) {
	ts := NewTimeScale(0)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts.Adjust(1)
		}()
	}
	wg.Wait()

	if got := ts.Load(); got != 100 {
		t.Errorf("after 100 concurrent increments scale = %v, want 100", got)
	}
}

func TestTimeScale_PauseResume(t *testing.T) {
	ts := NewTimeScale(12)

	ts.Pause()
	if !ts.Paused() || ts.Load() != 0 {
		t.Fatalf("paused scale = %v (paused=%v)", ts.Load(), ts.Paused())
	}

	ts.Pause()
	ts.Resume()
	if ts.Paused() || ts.Load() != 12 {
		t.Errorf("resumed scale = %v, want 12", ts.Load())
	}

	ts.Resume()
	if ts.Load() != 12 {
		t.Errorf("second resume changed scale to %v", ts.Load())
	}
}

func TestTimeScale_SetWhilePaused(t *testing.T) {
	ts := NewTimeScale(12)
	ts.Pause()
	ts.Set(3)
	ts.Resume()

	if ts.Load() != 3 {
		t.Errorf("scale set while paused was overwritten: %v", ts.Load())
	}
}

func TestTimeScale_Toggle(t *testing.T) {
	ts := NewTimeScale(2)

	ts.Toggle()
	if ts.Load() != 0 {
		t.Errorf("toggle should pause, scale = %v", ts.Load())
	}
	ts.Toggle()
	if ts.Load() != 2 {
		t.Errorf("toggle should resume, scale = %v", ts.Load())
	}
}

func TestTimeScale_ConcurrentToggle(t *testing.T) {
	ts := NewTimeScale(2)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts.Toggle()
		}()
	}
	wg.Wait()

	// an even number of toggles lands back where it started
	if ts.Paused() || ts.Load() != 2 {
		t.Errorf("after 100 toggles: paused %v, scale %v", ts.Paused(), ts.Load())
	}
}
