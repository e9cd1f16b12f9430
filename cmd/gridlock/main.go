// Command gridlock merges OCR text pages with their layout templates and
// drives the page pipeline stages from the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dgallion1/gridlock/internal/columns"
	"github.com/dgallion1/gridlock/internal/config"
	"github.com/dgallion1/gridlock/internal/loader"
	"github.com/dgallion1/gridlock/internal/merge"
	"github.com/dgallion1/gridlock/internal/ocr"
	"github.com/dgallion1/gridlock/internal/page"
	"github.com/dgallion1/gridlock/internal/pipeline"
	"github.com/dgallion1/gridlock/internal/runner"
	"github.com/dgallion1/gridlock/internal/workspace"
)

const usage = `usage: gridlock <command> [flags] [args]

commands:
  merge    [-margin N] [-debug] [-strategy row|column] TEMPLATE TEXT
  columns  [-margin N] FILE
  ocr      [-backend NAME] [-o FILE] IMAGE
  batch    [-workspace DIR] [-prefix P] [-force] [-margin N]
  parallel [-prefix P] [-force] [-j N] -in DIR -in-ext EXT -out DIR -out-ext EXT -action NAME COMMAND
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type env struct {
	cfg    config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if err := config.LoadDotenv(); err != nil {
		fmt.Fprintln(stderr, err)
	}
	e := env{
		cfg:    config.Load(),
		log:    slog.New(slog.NewTextHandler(stderr, nil)),
		stdout: stdout,
		stderr: stderr,
	}

	var err error
	switch args[0] {
	case "merge":
		err = e.mergeCmd(args[1:])
	case "columns":
		err = e.columnsCmd(args[1:])
	case "ocr":
		err = e.ocrCmd(ctx, args[1:])
	case "batch":
		err = e.batchCmd(ctx, args[1:])
	case "parallel":
		err = e.parallelCmd(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}

	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		fmt.Fprintln(stderr, ue.msg)
		return 2
	case errors.Is(err, errMergeFailed):
		return 1
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}

var errMergeFailed = errors.New("merge failed")

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func (e env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func (e env) loadPage(path string) (page.Page, error) {
	p, err := loader.LoadFile(path, loader.Options{
		PDFPage:              1,
		PDFFallbackPdftotext: e.cfg.PDFFallbackPdftotext,
	})
	if errors.Is(err, loader.ErrUnsupported) {
		// Anything without a known extension is read as plain text.
		p, err = page.LoadFile(path)
	}
	if errors.Is(err, page.ErrNotFound) {
		// Already reads "file not found - <path>".
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

func (e env) mergeCmd(args []string) error {
	fs := e.flagSet("merge")
	margin := fs.Int("margin", e.cfg.MergeMargin, "minimum blank poles between columns")
	debug := fs.Bool("debug", e.cfg.MergeDebug, "include diagnostics for lines that did not merge")
	strategy := fs.String("strategy", "", "use only this strategy (row or column)")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() != 2 {
		return usageError{"merge needs TEMPLATE and TEXT"}
	}

	strategies := merge.DefaultStrategies()
	if *strategy != "" {
		st, ok := merge.StrategyFor(merge.Kind(*strategy))
		if !ok {
			return usageError{fmt.Sprintf("unknown strategy %q", *strategy)}
		}
		strategies = []merge.Strategy{st}
	}

	template, err := e.loadPage(fs.Arg(0))
	if err != nil {
		return err
	}
	text, err := e.loadPage(fs.Arg(1))
	if err != nil {
		return err
	}

	res := merge.MergeWith(strategies, template, text, merge.Options{Margin: *margin, Debug: *debug})
	fmt.Fprint(e.stdout, res.String())
	if !res.OK {
		return errMergeFailed
	}
	return nil
}

func (e env) columnsCmd(args []string) error {
	fs := e.flagSet("columns")
	margin := fs.Int("margin", e.cfg.MergeMargin, "minimum blank poles between columns")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() != 1 {
		return usageError{"columns needs FILE"}
	}
	p, err := e.loadPage(fs.Arg(0))
	if err != nil {
		return err
	}

	extents := columns.FindColumns(p, *margin)
	for i, ext := range extents {
		fmt.Fprintf(e.stdout, "column %d: %d-%d\n", i+1, ext.Start, ext.End)
	}
	fmt.Fprint(e.stdout, strings.Join(columns.PasteColumns(columns.Split(p, extents), true), ""))
	return nil
}

func (e env) ocrCmd(ctx context.Context, args []string) error {
	fs := e.flagSet("ocr")
	backend := fs.String("backend", e.cfg.OCRBackend, "ocr backend (claude, tesseract or none)")
	out := fs.String("o", "", "write the text to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() != 1 {
		return usageError{"ocr needs IMAGE"}
	}

	rec, err := ocr.New(ocr.Config{
		Backend:    *backend,
		APIKey:     e.cfg.AnthropicAPIKey,
		Model:      e.cfg.OCRModel,
		PromptFile: e.cfg.OCRPromptFile,
		Language:   e.cfg.OCRLanguage,
	})
	if err != nil {
		return err
	}
	defer rec.Close()

	text, err := ocr.RecognizeFile(ctx, rec, fs.Arg(0))
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = io.WriteString(e.stdout, text)
		return err
	}
	if err := os.WriteFile(*out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	return nil
}

func (e env) batchCmd(ctx context.Context, args []string) error {
	fs := e.flagSet("batch")
	dir := fs.String("workspace", e.cfg.WorkspaceDir, "workspace root")
	prefix := fs.String("prefix", "", "only merge pages whose key starts with PREFIX-")
	force := fs.Bool("force", false, "re-merge pages that already have output")
	margin := fs.Int("margin", e.cfg.MergeMargin, "minimum blank poles between columns")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}

	sum, err := pipeline.Batch(ctx, workspace.New(*dir), pipeline.BatchOptions{
		Prefix:      *prefix,
		Merge:       merge.Options{Margin: *margin},
		Force:       *force,
		Concurrency: e.cfg.RunnerConcurrency,
	}, e.log)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "merged %d, skipped %d, failed %d, missing text %d\n",
		sum.Merged, sum.Skipped, len(sum.Failed), len(sum.Missing))
	for _, key := range sum.Failed {
		fmt.Fprintf(e.stdout, "failed: %s\n", key)
	}
	if len(sum.Failed) > 0 {
		return errMergeFailed
	}
	return nil
}

func (e env) parallelCmd(ctx context.Context, args []string) error {
	fs := e.flagSet("parallel")
	var t runner.ParallelTask
	fs.StringVar(&t.Action, "action", "process", "name used in progress messages")
	fs.StringVar(&t.Prefix, "prefix", "", "page key prefix")
	fs.StringVar(&t.InputDir, "in", "", "input directory")
	fs.StringVar(&t.InputExt, "in-ext", "", "input file extension")
	fs.StringVar(&t.OutputDir, "out", "", "output directory")
	fs.StringVar(&t.OutputExt, "out-ext", "", "output file extension")
	fs.BoolVar(&t.Force, "force", false, "rerun pages that already have output")
	jobs := fs.Int("j", e.cfg.RunnerConcurrency, "commands to run at once (0 means one per CPU)")
	if err := fs.Parse(args); err != nil {
		return usageError{err.Error()}
	}
	if fs.NArg() == 0 || t.InputDir == "" || t.OutputDir == "" || t.InputExt == "" || t.OutputExt == "" {
		return usageError{"parallel needs -in, -in-ext, -out, -out-ext and a COMMAND"}
	}
	t.Command = strings.Join(fs.Args(), " ")

	r := runner.New(*jobs, e.log)
	r.Stdout, r.Stderr = e.stdout, e.stderr
	n, err := r.Parallel(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%s: ran %d commands\n", t.Action, n)
	return nil
}
