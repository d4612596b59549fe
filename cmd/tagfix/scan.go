package main

import (
	"io"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/tagfix/internal/display"
	"github.com/simonhull/tagfix/internal/fixer"
	"github.com/simonhull/tagfix/internal/logging"
	"github.com/simonhull/tagfix/internal/scan"
)

func newScanCmd(f *flags, stdout, stderr io.Writer) *cobra.Command {
	var onlyIssues bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report files with malformed separators without changing them",
		Long: `scan reads every audio file of the directory in parallel and reports the
Title and Artist values that would be fixed. Nothing is backed up or written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.dryRun = true
			cfg, err := f.config()
			if err != nil {
				return err
			}

			log := logging.New(&logging.Config{Level: cfg.LogLevel(), Output: stderr})
			out := display.New(stdout, !cfg.NoColor)
			out.Banner(cfg.Dir, true)

			entries, err := scan.Dir(afero.NewOsFs(), cfg.Dir, scan.Options{Extensions: cfg.Extensions, Exclude: cfg.Exclude})
			if err != nil {
				log.Error("cannot list directory", "dir", cfg.Dir, "err", err)
				return errReported
			}
			if len(entries) == 0 {
				out.NoFiles()
				return nil
			}
			out.Found(len(entries))

			results, err := inspect(cmd, fixer.New(nil, log, fixer.WithDryRun(true)), scan.Paths(entries))
			if err != nil {
				out.Aborted()
				return err
			}

			var stats fixer.Stats
			for _, r := range results {
				stats.Add(r)
				if onlyIssues && r.Status == fixer.Unchanged {
					continue
				}
				out.Result(filepath.Base(r.Path), r)
			}
			out.Summary(stats, "", true)
			if !stats.OK() {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&onlyIssues, "issues", false, "list only files that would change or could not be read")
	return cmd
}

// inspect runs a dry-run fixer over paths on up to NumCPU goroutines.
// Results keep the order of paths.
func inspect(cmd *cobra.Command, fx *fixer.Fixer, paths []string) ([]fixer.Result, error) {
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())

	results := make([]fixer.Result, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fx.Process(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
