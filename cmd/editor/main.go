// Command editor is a tile map editor with animated tiles. Animations only
// advance while the window is focused and an animated tile is on screen.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/tileed/anim"
	"github.com/milk9111/tileed/document"
	"github.com/milk9111/tileed/levels"
	"github.com/milk9111/tileed/prefabs"
	"github.com/milk9111/tileed/session"
	"github.com/milk9111/tileed/visibility"
)

func main() {
	levelNames := flag.String("level", "demo", "comma-separated levels to open (basename or filename, .json optional)")
	watchDir := flag.String("dir", "levels", "directory to watch for level changes (empty disables)")
	preview := flag.Bool("preview", false, "start the always-on preview loop")
	noSession := flag.Bool("nosession", false, "do not restore or remember viewports")
	flag.Parse()

	spec, err := prefabs.LoadEditorSpec()
	if err != nil {
		log.Fatalf("editor: %v", err)
	}
	catalog, err := anim.Load()
	if err != nil {
		log.Fatalf("editor: %v", err)
	}

	var viewports *session.Viewports
	if !*noSession {
		if viewports, err = session.Open("tileed"); err != nil {
			log.Printf("editor: viewports will not be remembered: %v", err)
		}
	}

	ed, err := NewEditor(editorConfig{
		catalog: catalog,
		surface: visibility.Surface{
			Width:    spec.Surface.Width,
			Height:   spec.Surface.Height,
			TileSize: spec.Surface.TileSize,
		},
		minInterval: spec.MinInterval(),
		preview:     spec.PreviewLoop || *preview,
		viewports:   viewports,
	})
	if err != nil {
		log.Fatalf("editor: %v", err)
	}

	for _, name := range strings.Split(*levelNames, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := ed.OpenLevel(name); err != nil {
			log.Printf("%v", err)
		}
	}
	if len(ed.ws.Documents()) == 0 {
		ed.newDocument()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *watchDir != "" {
		if info, err := os.Stat(*watchDir); err == nil && info.IsDir() {
			w, err := levels.NewWatcher(spec.WatchDebounce(), *watchDir)
			if err != nil {
				log.Printf("editor: watch %s: %v", *watchDir, err)
			} else {
				defer w.Close()
				go reloadLoop(ctx, w, ed.ws)
			}
		}
	}

	ebiten.SetWindowSize(spec.Surface.Width, spec.Surface.Height)
	ebiten.SetWindowTitle("tileed")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// keep updating while unfocused so the clock sees the suspension
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(ed); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
	ed.Close()
}

// reloadLoop applies level files changed on disk to the documents opened
// from them. The workspace bumps their versions, so visibility follows.
func reloadLoop(ctx context.Context, w *levels.Watcher, ws *document.Workspace) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			id, found, err := levels.Reload(ws, path)
			switch {
			case err != nil:
				log.Printf("levels: reload %s: %v", path, err)
			case found:
				log.Printf("levels: reloaded %s into document %d", path, id)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Printf("levels: watch: %v", err)
		}
	}
}
