package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	imagepkg "github.com/youruser/storeassets/internal/image"
	"github.com/youruser/storeassets/internal/job"
)

// Watcher re-runs jobs when one of their local sources changes.
type Watcher struct {
	jobs     []job.Job
	loader   job.Loader
	watcher  *fsnotify.Watcher
	bySource map[string][]int

	// Debounce is how long a source must stay quiet before its jobs run.
	Debounce time.Duration
	// OnRun, if set, receives every result produced by the watcher.
	OnRun func(job.Result)
}

// NewWatcher prepares watches on the directories of every local source.
func NewWatcher(jobs []job.Job, loader job.Loader) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		jobs:     jobs,
		loader:   loader,
		watcher:  fsWatcher,
		bySource: make(map[string][]int),
		Debounce: 500 * time.Millisecond,
	}
	dirs := map[string]bool{}
	for i, j := range jobs {
		for _, l := range j.Layers {
			if !imagepkg.IsLocalSource(l.Source) {
				continue
			}
			abs, err := filepath.Abs(l.Source)
			if err != nil {
				fsWatcher.Close()
				return nil, fmt.Errorf("failed to resolve %s: %w", l.Source, err)
			}
			w.bySource[abs] = append(w.bySource[abs], i)
			dirs[filepath.Dir(abs)] = true
		}
	}
	for dir := range dirs {
		if err := fsWatcher.Add(dir); err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to watch folder %s: %w", dir, err)
		}
		log.Printf("Watching folder: %s", dir)
	}
	return w, nil
}

// Sources returns the number of distinct local sources being watched.
func (w *Watcher) Sources() int { return len(w.bySource) }

// Run processes events until ctx is done. Jobs run one at a time on the
// calling goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	d := newDebouncer(w.Debounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			for _, idx := range w.bySource[filepath.Clean(event.Name)] {
				d.schedule(ctx, idx)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case f := <-d.fire:
			if !d.accept(f) {
				continue
			}
			log.Printf("Source changed, re-running %s", w.jobs[f.job].Name)
			res := job.Run(ctx, w.jobs[f.job], w.loader)
			if w.OnRun != nil {
				w.OnRun(res)
			}
		}
	}
}

// firing is a debounce timer expiry for one job.
type firing struct {
	job, gen int
}

// debouncer coalesces bursts of events per job. Each schedule bumps the
// job's generation, and only the firing of the latest generation is
// accepted: a stopped timer may already be blocked sending its firing.
type debouncer struct {
	delay  time.Duration
	gen    map[int]int
	timers map[int]*time.Timer
	fire   chan firing
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		gen:    make(map[int]int),
		timers: make(map[int]*time.Timer),
		fire:   make(chan firing),
	}
}

func (d *debouncer) schedule(ctx context.Context, idx int) {
	if t, exists := d.timers[idx]; exists {
		t.Stop()
	}
	d.gen[idx]++
	f := firing{job: idx, gen: d.gen[idx]}
	d.timers[idx] = time.AfterFunc(d.delay, func() {
		select {
		case d.fire <- f:
		case <-ctx.Done():
		}
	})
}

func (d *debouncer) accept(f firing) bool {
	if d.gen[f.job] != f.gen {
		return false
	}
	delete(d.timers, f.job)
	return true
}

func (d *debouncer) stop() {
	for _, t := range d.timers {
		t.Stop()
	}
}
