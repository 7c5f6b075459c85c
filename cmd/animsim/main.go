// Command animsim drives the animation scheduler without a window, either in
// real time against a level or through scenario scripts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/clock"
	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/driver"
	"github.com/milk9111/tileed/levels"
	"github.com/milk9111/tileed/prefabs"
	"github.com/milk9111/tileed/script"
	"github.com/milk9111/tileed/visibility"
)

func main() {
	scriptName := flag.String("script", "", "scenario script in prefabs/scripts to run (.tengo optional)")
	all := flag.Bool("all", false, "run every bundled scenario script")
	levelName := flag.String("level", "demo", "level to animate in real-time mode")
	duration := flag.Duration("duration", 3*time.Second, "how long to run in real-time mode")
	suspendAfter := flag.Duration("suspend-after", 0, "suspend the clock after this long in real-time mode (0 never)")
	preview := flag.Bool("preview", false, "also run the ungated preview loop")
	quiet := flag.Bool("q", false, "only report failures")
	flag.Parse()

	logger := log.Default()
	if *quiet {
		logger = log.New(io.Discard, "", 0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := script.DefaultConfig(logger)
	if err != nil {
		log.Fatalf("animsim: %v", err)
	}
	cfg.Preview = cfg.Preview || *preview

	switch {
	case *all:
		names, err := prefabs.Scripts()
		if err != nil {
			log.Fatalf("animsim: list scripts: %v", err)
		}
		if !runScripts(ctx, names, cfg) {
			os.Exit(1)
		}
	case *scriptName != "":
		name := *scriptName
		if filepath.Ext(name) == "" {
			name += ".tengo"
		}
		if !runScripts(ctx, []string{name}, cfg) {
			os.Exit(1)
		}
	default:
		if err := realtime(ctx, *levelName, *duration, *suspendAfter, cfg); err != nil {
			log.Fatalf("animsim: %v", err)
		}
	}
}

func runScripts(ctx context.Context, names []string, cfg script.Config) bool {
	ok := true
	for _, name := range names {
		res, err := script.RunFile(ctx, name, cfg)
		switch {
		case err != nil:
			ok = false
			fmt.Printf("FAIL %s: %v\n", name, err)
		case !res.Passed():
			ok = false
			fmt.Printf("FAIL %s (tick %d)\n", name, res.Tick)
			for _, f := range res.Failures {
				fmt.Printf("     %s\n", f)
			}
		default:
			fmt.Printf("ok   %s (tick %d, frames %d, scans %d)\n", name, res.Tick, res.Frames, res.Scans)
		}
	}
	return ok
}

// realtime animates one level on a wall-clock ticker and reports the counter
// once a second.
func realtime(ctx context.Context, levelName string, duration, suspendAfter time.Duration, cfg script.Config) error {
	spec, err := prefabs.LoadEditorSpec()
	if err != nil {
		return err
	}

	ws := document.NewWorkspace()
	tracker := visibility.NewTracker(cfg.Surface, cfg.Catalog)
	tracker.Attach(ws)

	id, lvl, err := levels.Open(ws, levelName)
	if err != nil {
		return err
	}
	log.Printf("animsim: opened %s as document %d", lvl.Name, id)

	counter := clock.NewCounter()
	susp := &clock.Flag{}
	clk := clock.New(counter,
		clock.WithVisibility(tracker),
		clock.WithSuspension(susp),
		clock.WithMinInterval(cfg.MinInterval),
		clock.WithLogger(cfg.Logger),
	)

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	src := driver.NewTickerSource(ctx, spec.RefreshInterval())
	defer src.Close()

	loop := driver.New(src, clk).Named(lvl.Name).WithLogger(cfg.Logger).Start()
	defer loop.Stop()
	if cfg.Preview {
		pv := driver.New(src, clock.Ungated(counter, clock.WithMinInterval(cfg.MinInterval), clock.WithLogger(cfg.Logger))).
			Named("preview").WithLogger(cfg.Logger).Start()
		defer pv.Stop()
	}

	var suspendC <-chan time.Time
	if suspendAfter > 0 {
		suspendC = time.After(suspendAfter)
	}
	report := time.NewTicker(time.Second)
	defer report.Stop()

	for {
		select {
		case <-ctx.Done():
			printSummary(lvl.Name, counter, loop, tracker, cfg.Catalog)
			return nil
		case <-suspendC:
			susp.Set(true)
			log.Printf("animsim: suspended")
		case <-report.C:
			log.Printf("animsim: tick=%d visible=%v frames=%d", counter.Get(), tracker.AnyVisible(), loop.Frames())
		}
	}
}

func printSummary(name string, counter *clock.Counter, loop *driver.Loop, tracker *visibility.Tracker, catalog *anim.Catalog) {
	stats := tracker.Stats()
	fmt.Printf("%s: tick=%d frames=%d advances=%d scans=%d\n", name, counter.Get(), loop.Frames(), loop.Advances(), stats.Scans)
	for _, def := range catalog.Definitions() {
		frame, _ := anim.FrameIndex(counter.Get(), 0, def.FrameCount())
		fmt.Printf("  %-10s frame %d/%d (tile %d)\n", def.Name, frame, def.FrameCount(), def.Frames[frame])
	}
}
