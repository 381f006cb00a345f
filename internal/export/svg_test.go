package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/orbsim/internal/dynamo"
	"github.com/san-kum/orbsim/internal/storage"
)

func TestTrajectorySVG(t *testing.T) {
	samples := []storage.Sample{
		{Time: 0, Body: "star", Position: dynamo.Vec3{0, 0, 0}},
		{Time: 0, Body: "planet", Position: dynamo.Vec3{10, 0, 0}},
		{Time: 1, Body: "star", Position: dynamo.Vec3{0, 0, 0}},
		{Time: 1, Body: "planet", Position: dynamo.Vec3{0, 0, 10}},
		{Time: 2, Body: "star", Position: dynamo.Vec3{0, 0, 0}},
		{Time: 2, Body: "planet", Position: dynamo.Vec3{-10, 0, 0}},
	}

	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, samples, 200, 100); err != nil {
		t.Fatalf("TrajectorySVG: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Errorf("not a complete SVG document")
	}
	if n := strings.Count(out, "<g id="); n != 2 {
		t.Errorf("expected 2 body groups, got %d", n)
	}
	if n := strings.Count(out, "<path"); n != 2 {
		t.Errorf("expected 2 paths, got %d", n)
	}
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 end markers, got %d", n)
	}
	if !strings.Contains(out, Palette[0]) || !strings.Contains(out, Palette[1]) {
		t.Errorf("bodies should take the first two palette colours")
	}
}

func TestTrajectorySVG_Centred(t *testing.T) {
	// a single static body sits in the middle of the viewport
	samples := []storage.Sample{{Body: "lonely", Position: dynamo.Vec3{5, 1, 5}}}

	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, samples, 100, 100); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `cx="50.0" cy="50.0"`) {
		t.Errorf("static body not centred:\n%s", buf.String())
	}
}

func TestTrajectorySVG_Invalid(t *testing.T) {
	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, nil, 100, 100); err == nil {
		t.Error("expected error for no samples")
	}
	samples := []storage.Sample{{Body: "a"}}
	if err := TrajectorySVG(&buf, samples, 0, 100); err == nil {
		t.Error("expected error for empty viewport")
	}
}

func TestEscape(t *testing.T) {
	if got := escape(`a<b>&"c"`); got != "a&lt;b&gt;&amp;&quot;c&quot;" {
		t.Errorf("escape = %q", got)
	}
}
