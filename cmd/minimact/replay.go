package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/minimact/client-go/pkg/orchestrator"
	"github.com/minimact/client-go/pkg/vdom"
	"github.com/spf13/cobra"
)

func replayCmd() *cobra.Command {
	var fixtureDir string
	var watch bool

	cmd := &cobra.Command{
		Use:   "replay FIXTURE_DIR",
		Short: "Replay captured server frames against a local orchestrator",
		Long: `replay reads one JSON-encoded protocol.Message per file from
FIXTURE_DIR, in filename order, and feeds each one through an
Orchestrator exactly as the Transport would. It boots against an
empty document, so no component instance exists: frames addressed to a
component (UpdateComponent, ApplyPatches and the like) are logged and
skipped, and RegisterComponent has no inbound handler. Frames that need
no instance, such as QueueHint or Ack, take effect.

With --watch, replay keeps running and re-processes any fixture file
that is created or written to after the initial pass, which is useful
for iterating on server-side patch generation without a live hub.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtureDir = args[0]
			return runReplay(fixtureDir, watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and replay files as they change")
	return cmd
}

func runReplay(fixtureDir string, watch bool) error {
	o := orchestrator.New(orchestrator.Config{TransportURL: "ws://replay.invalid/hub"})

	doc, err := vdom.ParseFragment("")
	if err != nil {
		return fmt.Errorf("parse initial document: %w", err)
	}
	if _, err := o.Boot(context.Background(), doc); err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	files, err := sortedFixtureFiles(fixtureDir)
	if err != nil {
		return fmt.Errorf("list fixtures: %w", err)
	}
	for _, path := range files {
		if err := replayFile(o, path); err != nil {
			return fmt.Errorf("replay %s: %w", path, err)
		}
		fmt.Printf("replayed %s\n", filepath.Base(path))
	}

	if !watch {
		return nil
	}
	return watchFixtures(o, fixtureDir)
}

func sortedFixtureFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func replayFile(o *orchestrator.Orchestrator, path string) error {
	frame, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return o.InjectFrame(frame)
}

func watchFixtures(o *orchestrator.Orchestrator, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("watching for fixture changes, press ctrl+c to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := replayFile(o, event.Name); err != nil {
				fmt.Fprintf(os.Stderr, "replay %s: %v\n", event.Name, err)
				continue
			}
			fmt.Printf("replayed %s\n", filepath.Base(event.Name))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
