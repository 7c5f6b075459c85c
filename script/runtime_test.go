package script

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/milk9111/tileed/prefabs"
)

func quietConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := DefaultConfig(log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	return cfg
}

func TestBundledScenarios(t *testing.T) {
	names, err := prefabs.Scripts()
	if err != nil {
		t.Fatalf("Scripts: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("no bundled scenarios")
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			res, err := RunFile(context.Background(), name, quietConfig(t))
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !res.Passed() {
				t.Fatalf("failures:\n%s", strings.Join(res.Failures, "\n"))
			}
		})
	}
}

func TestExpectRecordsFailure(t *testing.T) {
	rt := New("inline", quietConfig(t))
	res, err := rt.Run(context.Background(), []byte(`
sim.expect(sim.tick() == 0, "fresh counter")
sim.expect(false, "boom", 42)
`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Passed() || len(res.Failures) != 1 {
		t.Fatalf("failures = %v", res.Failures)
	}
	if !strings.Contains(res.Failures[0], "boom 42") {
		t.Fatalf("failure message = %q", res.Failures[0])
	}
}

func TestRunErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{name: "compile", src: `sim.frame(`},
		{name: "unknown document", src: `sim.set_cell(99, 0, 0, 3)`},
		{name: "out of bounds", src: `d := sim.open("x"); sim.set_cell(d, 500, 0, 3)`},
		{name: "wrong arity", src: `sim.clear_cell(1)`},
		{name: "bad argument", src: `sim.frame("soon")`},
		{name: "missing level", src: `sim.open_level("no-such-level")`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.name, quietConfig(t)).Run(context.Background(), []byte(tc.src))
			if err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPreviewLoopAdvancesWithoutVisibleAnimation(t *testing.T) {
	cfg := quietConfig(t)
	cfg.Preview = true
	res, err := New("preview", cfg).Run(context.Background(), []byte(`
sim.open("empty")
for i := 0; i < 5; i++ { sim.frame(200) }
`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Tick != 5 {
		t.Fatalf("tick = %d, want 5", res.Tick)
	}
}

func TestStopEndsScheduling(t *testing.T) {
	res, err := New("stop", quietConfig(t)).Run(context.Background(), []byte(`
d := sim.open("s")
sim.set_cell(d, 0, 0, 3)
sim.frame(200)
sim.stop()
for i := 0; i < 5; i++ { sim.frame(200) }
sim.expect(sim.tick() == 1, "advanced after stop")
`))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Passed() {
		t.Fatalf("failures: %v", res.Failures)
	}
	if res.Frames != 1 {
		t.Fatalf("frames = %d, want 1", res.Frames)
	}
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("cancelled", quietConfig(t)).Run(ctx, []byte(`for { sim.frame(16) }`))
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
