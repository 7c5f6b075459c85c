// Package script runs scenario scripts written in tengo against a real
// workspace, visibility tracker and clock, with virtual frame time. It is
// how the editor's scheduling behaviour is exercised without a window.
package script

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/clock"
	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/driver"
	"github.com/milk9111/tileed/levels"
	"github.com/milk9111/tileed/prefabs"
	"github.com/milk9111/tileed/tile"
	"github.com/milk9111/tileed/visibility"
)

type Config struct {
	Catalog     *anim.Catalog
	Surface     visibility.Surface
	MinInterval time.Duration
	// Preview also starts the ungated preview loop on the same counter.
	Preview bool
	Logger  *log.Logger
}

// Result summarises one scenario run.
type Result struct {
	Name     string
	Tick     int64
	Frames   int64
	Scans    int64
	Failures []string
}

func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

// Runtime is a fresh scheduling stack for one scenario.
type Runtime struct {
	name    string
	catalog *anim.Catalog
	logger  *log.Logger

	ws      *document.Workspace
	tracker *visibility.Tracker
	counter *clock.Counter
	susp    *clock.Flag
	queue   *driver.FrameQueue
	loop    *driver.Loop
	preview *driver.Loop
	now     time.Duration

	failures []string
}

func New(name string, cfg Config) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	rt := &Runtime{
		name:    name,
		catalog: cfg.Catalog,
		logger:  logger,
		ws:      document.NewWorkspace(),
		tracker: visibility.NewTracker(cfg.Surface, cfg.Catalog),
		counter: clock.NewCounter(),
		susp:    &clock.Flag{},
		queue:   driver.NewFrameQueue(),
	}
	rt.tracker.Attach(rt.ws)

	clk := clock.New(rt.counter,
		clock.WithVisibility(rt.tracker),
		clock.WithSuspension(rt.susp),
		clock.WithMinInterval(cfg.MinInterval),
		clock.WithLogger(logger),
	)
	rt.loop = driver.New(rt.queue, clk).Named(name).WithLogger(logger).Start()
	if cfg.Preview {
		pclk := clock.Ungated(rt.counter, clock.WithMinInterval(cfg.MinInterval), clock.WithLogger(logger))
		rt.preview = driver.New(rt.queue, pclk).Named(name + "/preview").WithLogger(logger).Start()
	}
	return rt
}

// RunFile loads a script by name from prefabs/scripts and runs it.
func RunFile(ctx context.Context, name string, cfg Config) (Result, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return Result{Name: name}, fmt.Errorf("script: load %s: %w", name, err)
	}
	return New(name, cfg).Run(ctx, src)
}

// Run compiles and executes src. Script expectation failures are reported in
// the result; compile and runtime errors are returned.
func (rt *Runtime) Run(ctx context.Context, src []byte) (Result, error) {
	defer rt.teardown()

	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("sim", rt.engine()); err != nil {
		return rt.result(), fmt.Errorf("script: %s: %w", rt.name, err)
	}

	compiled, err := script.Compile()
	if err != nil {
		return rt.result(), fmt.Errorf("script: compile %s: %w", rt.name, err)
	}
	if err := compiled.RunContext(ctx); err != nil {
		return rt.result(), fmt.Errorf("script: run %s: %w", rt.name, err)
	}
	return rt.result(), nil
}

func (rt *Runtime) teardown() {
	rt.loop.Stop()
	if rt.preview != nil {
		rt.preview.Stop()
	}
}

func (rt *Runtime) result() Result {
	return Result{
		Name:     rt.name,
		Tick:     rt.counter.Get(),
		Frames:   rt.loop.Frames(),
		Scans:    rt.tracker.Stats().Scans,
		Failures: append([]string(nil), rt.failures...),
	}
}

func (rt *Runtime) engine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	fn := func(name string, f tengo.CallableFunc) {
		values[name] = &tengo.UserFunction{Name: name, Value: f}
	}

	fn("open", func(args ...tengo.Object) (tengo.Object, error) {
		name := "untitled"
		if len(args) > 0 {
			name = objectAsString(args[0])
		}
		id := rt.ws.Open(name, "", nil, document.DefaultViewport())
		return &tengo.Int{Value: int64(id)}, nil
	})

	fn("open_level", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		id, _, err := levels.Open(rt.ws, objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		return &tengo.Int{Value: int64(id)}, nil
	})

	fn("close", func(args ...tengo.Object) (tengo.Object, error) {
		id, err := docArg(args, 1)
		if err != nil {
			return nil, err
		}
		return boolObject(rt.ws.Close(id)), nil
	})

	fn("set_cell", func(args ...tengo.Object) (tengo.Object, error) {
		ints, err := intArgs("set_cell", args, 4, 5)
		if err != nil {
			return nil, err
		}
		offset := 0
		if len(ints) == 5 {
			offset = ints[4]
		}
		return tengo.UndefinedValue, rt.ws.SetCell(document.ID(ints[0]), ints[1], ints[2], tile.Encode(ints[3], offset))
	})

	fn("set_tile", func(args ...tengo.Object) (tengo.Object, error) {
		ints, err := intArgs("set_tile", args, 4, 4)
		if err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, rt.ws.SetCell(document.ID(ints[0]), ints[1], ints[2], tile.Static(ints[3]))
	})

	fn("clear_cell", func(args ...tengo.Object) (tengo.Object, error) {
		ints, err := intArgs("clear_cell", args, 3, 3)
		if err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, rt.ws.SetCell(document.ID(ints[0]), ints[1], ints[2], 0)
	})

	fn("pan", func(args ...tengo.Object) (tengo.Object, error) {
		id, f, err := docFloats("pan", args, 2)
		if err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, rt.ws.Pan(id, f[0], f[1])
	})

	fn("zoom", func(args ...tengo.Object) (tengo.Object, error) {
		id, f, err := docFloats("zoom", args, 1)
		if err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, rt.ws.ZoomBy(id, f[0])
	})

	fn("viewport", func(args ...tengo.Object) (tengo.Object, error) {
		id, f, err := docFloats("viewport", args, 3)
		if err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, rt.ws.SetViewport(id, document.Viewport{X: f[0], Y: f[1], Zoom: f[2]})
	})

	fn("suspend", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		rt.susp.Set(!args[0].IsFalsy())
		return tengo.UndefinedValue, nil
	})

	// frame([ms]) advances virtual time and presents one frame.
	fn("frame", func(args ...tengo.Object) (tengo.Object, error) {
		step := 16
		if len(args) > 0 {
			v, ok := tengo.ToInt(args[0])
			if !ok || v < 0 {
				return nil, tengo.ErrInvalidArgumentType{Name: "ms", Expected: "non-negative int", Found: args[0].TypeName()}
			}
			step = v
		}
		rt.now += time.Duration(step) * time.Millisecond
		rt.queue.Pump(rt.now)
		return &tengo.Int{Value: rt.counter.Get()}, nil
	})

	fn("tick", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: rt.counter.Get()}, nil
	})

	fn("now", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: rt.now.Milliseconds()}, nil
	})

	fn("visible", func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(rt.tracker.AnyVisible()), nil
	})

	fn("scans", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: rt.tracker.Stats().Scans}, nil
	})

	// frame_of(anim, offset) is the displayed frame index now, or -1 for a
	// placeholder.
	fn("frame_of", func(args ...tengo.Object) (tengo.Object, error) {
		ints, err := intArgs("frame_of", args, 1, 2)
		if err != nil {
			return nil, err
		}
		offset := 0
		if len(ints) == 2 {
			offset = ints[1]
		}
		cell := tile.Encode(ints[0], offset)
		id, off := tile.Decode(cell)
		def, ok := rt.catalog.Get(id)
		if !ok {
			return &tengo.Int{Value: -1}, nil
		}
		frame, _ := anim.FrameIndex(rt.counter.Get(), off, def.FrameCount())
		return &tengo.Int{Value: int64(frame)}, nil
	})

	fn("stop", func(args ...tengo.Object) (tengo.Object, error) {
		rt.teardown()
		return tengo.UndefinedValue, nil
	})

	fn("expect", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		if !args[0].IsFalsy() {
			return tengo.TrueValue, nil
		}
		msg := "expectation failed"
		if len(args) > 1 {
			parts := make([]string, 0, len(args)-1)
			for _, a := range args[1:] {
				parts = append(parts, objectAsString(a))
			}
			msg = strings.Join(parts, " ")
		}
		msg = fmt.Sprintf("t=%dms tick=%d: %s", rt.now.Milliseconds(), rt.counter.Get(), msg)
		rt.failures = append(rt.failures, msg)
		rt.logger.Printf("script: %s: %s", rt.name, msg)
		return tengo.FalseValue, nil
	})

	fn("log", func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		rt.logger.Printf("script: %s: %s", rt.name, strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func docArg(args []tengo.Object, n int) (document.ID, error) {
	if len(args) != n {
		return 0, tengo.ErrWrongNumArguments
	}
	v, ok := tengo.ToInt(args[0])
	if !ok {
		return 0, tengo.ErrInvalidArgumentType{Name: "doc", Expected: "int", Found: args[0].TypeName()}
	}
	return document.ID(v), nil
}

func intArgs(name string, args []tengo.Object, min, max int) ([]int, error) {
	if len(args) < min || len(args) > max {
		return nil, tengo.ErrWrongNumArguments
	}
	out := make([]int, len(args))
	for i, a := range args {
		v, ok := tengo.ToInt(a)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: fmt.Sprintf("%s arg %d", name, i), Expected: "int", Found: a.TypeName()}
		}
		out[i] = v
	}
	return out, nil
}

func docFloats(name string, args []tengo.Object, n int) (document.ID, []float64, error) {
	if len(args) != n+1 {
		return 0, nil, tengo.ErrWrongNumArguments
	}
	id, err := docArg(args[:1], 1)
	if err != nil {
		return 0, nil, err
	}
	out := make([]float64, n)
	for i, a := range args[1:] {
		v, ok := tengo.ToFloat64(a)
		if !ok {
			return 0, nil, tengo.ErrInvalidArgumentType{Name: fmt.Sprintf("%s arg %d", name, i+1), Expected: "float", Found: a.TypeName()}
		}
		out[i] = v
	}
	return id, out, nil
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
