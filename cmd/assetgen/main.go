package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/youruser/storeassets/internal/compliance"
	"github.com/youruser/storeassets/internal/config"
	imagepkg "github.com/youruser/storeassets/internal/image"
	"github.com/youruser/storeassets/internal/job"
	"github.com/youruser/storeassets/internal/watch"
)

const usage = `usage:
  assetgen render [-n] [-only name] <manifest.yaml>
  assetgen inspect [-sizes 1280x800,640x400] <file>...
  assetgen inspect -manifest <manifest.yaml>
  assetgen watch <manifest.yaml>`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var code int
	switch os.Args[1] {
	case "render":
		code = render(ctx, os.Args[2:])
	case "inspect":
		code = inspect(os.Args[2:])
	case "watch":
		code = watchCmd(ctx, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		code = 2
	}
	os.Exit(code)
}

func loadJobs(path string) (*config.Manifest, []job.Job) {
	m, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load manifest: %v", err)
	}
	jobs, err := m.BuildJobs()
	if err != nil {
		log.Fatalf("Failed to load manifest: %v", err)
	}
	return m, jobs
}

func render(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	dry := fs.Bool("n", false, "print the plan without rendering")
	only := fs.String("only", "", "run only the named job")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	_, jobs := loadJobs(fs.Arg(0))
	if *only != "" {
		var sel []job.Job
		for _, j := range jobs {
			if j.Name == *only {
				sel = append(sel, j)
			}
		}
		if len(sel) == 0 {
			log.Printf("no job named %q", *only)
			return 2
		}
		jobs = sel
	}
	if *dry {
		for _, j := range jobs {
			fmt.Println(job.Describe(j))
		}
		return 0
	}

	results := job.RunAll(ctx, jobs, imagepkg.NewSourceLoader())
	if n := job.Failed(results); n > 0 {
		log.Printf("%d of %d job(s) failed", n, len(results))
		return 1
	}
	return 0
}

func inspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	sizes := fs.String("sizes", "", "allowed sizes, comma separated WxH (default 1280x800,640x400)")
	manifest := fs.String("manifest", "", "take sizes and files from the manifest compliance section")
	fs.Parse(args)

	allowed := compliance.ScreenshotSizes
	files := fs.Args()
	if *manifest != "" {
		m, err := config.Load(*manifest)
		if err != nil {
			log.Fatalf("Failed to load manifest: %v", err)
		}
		if allowed, err = m.ComplianceSizes(); err != nil {
			log.Fatalf("Failed to load manifest: %v", err)
		}
		files = append(m.ComplianceFiles(), files...)
	}
	if *sizes != "" {
		var err error
		if allowed, err = compliance.ParseSizes(*sizes); err != nil {
			log.Fatalf("Invalid -sizes: %v", err)
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	summary := compliance.InspectFiles(files, allowed)
	if err := summary.WriteText(os.Stdout); err != nil {
		log.Printf("writing report: %v", err)
		return 1
	}
	if !summary.OK() {
		return 1
	}
	return 0
}

func watchCmd(ctx context.Context, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	_, jobs := loadJobs(args[0])
	loader := imagepkg.NewSourceLoader()

	// Render once so outputs exist before the first change.
	job.RunAll(ctx, jobs, loader)

	w, err := watch.NewWatcher(jobs, loader)
	if err != nil {
		log.Printf("Failed to create watcher: %v", err)
		return 1
	}
	log.Println("Press Ctrl+C to stop")
	if err := w.Run(ctx); err != nil {
		log.Printf("Watcher failed: %v", err)
		return 1
	}
	log.Println("Shutting down...")
	return 0
}
