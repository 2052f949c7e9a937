package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounceDelay coalesces bursts of file events into one rebuild.
const debounceDelay = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "watch <page>",
		Short: "Re-render a page whenever a template changes",
		Long: `Render a page, then watch the templates directory and render it again
after every change. Press Ctrl+C to stop.`,
		Example: `  # Re-render to stdout on every change
  headfix watch blog/post/index.page

  # Keep a file up to date
  headfix watch blog/post/index.page --out public/post.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, cmd, args[0], outFile)
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "Write the page to this file instead of stdout")
	return cmd
}

// pageWatcher rebuilds one page.
type pageWatcher struct {
	cmdCtx  *CommandContext
	page    string
	outFile string
	stdout  io.Writer

	mu sync.Mutex
}

func runWatch(ctx context.Context, cmd *cobra.Command, name, outFile string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	w := &pageWatcher{cmdCtx: cmdCtx, page: name, outFile: outFile, stdout: cmd.OutOrStdout()}

	// Initial build
	if err := w.rebuild(); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, cmdCtx.Cfg.TemplatesDir); err != nil {
		return fmt.Errorf("failed to watch templates dir: %w", err)
	}
	cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", cmdCtx.Cfg.TemplatesDir))

	w.loop(ctx, watcher)
	return nil
}

// loop handles file system events until ctx is done.
func (w *pageWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchDirRecursive(watcher, event.Name)
				}
			}

			// Debounce rebuilds
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			changed := event.Name
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				w.cmdCtx.Logger.Info("change detected", "file", filepath.Base(changed))
				if err := w.rebuild(); err != nil {
					w.cmdCtx.Renderer.Error(fmt.Sprintf("Rebuild error: %v", err))
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.cmdCtx.Logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant reports whether an event can change the rendered page.
func (w *pageWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if w.outFile != "" {
		if abs, err := filepath.Abs(w.outFile); err == nil {
			if ev, err := filepath.Abs(event.Name); err == nil && ev == abs {
				return false
			}
		}
	}
	return !strings.HasPrefix(filepath.Base(event.Name), ".")
}

// rebuild renders the page to the output file or stdout.
func (w *pageWatcher) rebuild() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	page, report, err := w.cmdCtx.Build(w.page, w.cmdCtx.Cfg.Repair)
	if err != nil {
		return err
	}
	html, err := w.cmdCtx.HTML.RenderString(page.Root)
	if err != nil {
		return fmt.Errorf("failed to render page %s: %w", w.page, err)
	}

	if w.outFile == "" {
		_, err := fmt.Fprintln(w.stdout, html)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(w.outFile), 0750); err != nil {
		return err
	}
	if err := os.WriteFile(w.outFile, []byte(html), 0600); err != nil {
		return err
	}
	w.cmdCtx.Renderer.Success(fmt.Sprintf("%s -> %s (%d repaired)", w.page, w.outFile, report.Recognized+report.Promoted))
	return nil
}

// watchDirRecursive adds a directory and its subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
