package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/simonhull/tagfix"
	"github.com/simonhull/tagfix/internal/backup"
	"github.com/simonhull/tagfix/internal/config"
	"github.com/simonhull/tagfix/internal/display"
	"github.com/simonhull/tagfix/internal/fixer"
	"github.com/simonhull/tagfix/internal/logging"
	"github.com/simonhull/tagfix/internal/scan"
)

// flags holds the command line values shared by all commands.
type flags struct {
	dir       string
	dryRun    bool
	noPause   bool
	verbose   bool
	noColor   bool
	backupDir string
	exts      []string
	exclude   []string
}

func (f *flags) bind(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.dir, "dir", "d", "", "directory to process (default: the executable's directory)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log every field change and parse warning")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&f.noPause, "no-pause", false, `do not wait for Enter before exiting`)
	pf.StringSliceVar(&f.exts, "ext", nil, "file extensions to process (default: .mp3,.flac,.m4a,.wav,.ogg,.wma,.aac)")
	pf.StringSliceVar(&f.exclude, "exclude", nil, "glob patterns of file names to skip")

	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "report what would change without backing up or writing")
	cmd.Flags().StringVar(&f.backupDir, "backup-dir", config.DefaultBackupDirName, "name of the backup directory inside --dir")
}

// config turns the flags into a validated configuration.
func (f *flags) config() (*config.Config, error) {
	cfg := config.Default()
	if f.dir != "" {
		abs, err := filepath.Abs(f.dir)
		if err != nil {
			return nil, err
		}
		cfg.Dir = abs
	}
	cfg.DryRun = f.dryRun
	cfg.Verbose = f.verbose
	cfg.NoColor = f.noColor || os.Getenv("NO_COLOR") != ""
	if f.noPause {
		cfg.Pause = false
	}
	if f.backupDir != "" {
		cfg.BackupDirName = f.backupDir
	}
	if len(f.exts) > 0 {
		cfg.Extensions = f.exts
	}
	cfg.Exclude = f.exclude

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "tagfix",
		Short: "Fix separators in the Title and Artist tags of audio files",
		Long: `tagfix replaces malformed separators in the Title and Artist tags of the
audio files in one directory (not its subdirectories) with ", ":

  NUL bytes              "A\x00B"  -> "A, B"
  double backslashes     "A\\B"    -> "A, B"
  single backslashes     "A\B"     -> "A, B"

Every file is copied to backup/<name>.backup before it is first changed.`,
		Version:       tagfix.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config()
			if err != nil {
				return err
			}
			return runFix(cmd, cfg, stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f.bind(cmd)
	cmd.AddCommand(newScanCmd(f, stdout, stderr))
	return cmd
}

// runFix processes every audio file of cfg.Dir in name order.
func runFix(cmd *cobra.Command, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	ctx := cmd.Context()
	log := logging.New(&logging.Config{Level: cfg.LogLevel(), Output: stderr})
	out := display.New(stdout, !cfg.NoColor)
	if cfg.Pause {
		defer out.Pause(stdin)
	}

	out.Banner(cfg.Dir, cfg.DryRun)

	// The backup directory exists before any file is touched
	var store *backup.Store
	if !cfg.DryRun {
		var err error
		if store, err = backup.New(cfg.BackupDir()); err != nil {
			log.Error("cannot create backup directory", "dir", cfg.BackupDir(), "err", err)
			return errReported
		}
	}

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

	var b fixer.Backupper = store
	if store == nil {
		b = noBackup{}
	}
	// Every save is re-read and compared while the backup still exists
	fx := fixer.New(b, log,
		fixer.WithDryRun(cfg.DryRun),
		fixer.WithSaveOptions(tagfix.WithValidation()),
	)

	stats, err := fx.Run(ctx, scan.Paths(entries), func(r fixer.Result) {
		name := filepath.Base(r.Path)
		out.Start(name)
		out.Result(name, r)
	})
	if err != nil {
		out.Aborted()
	}
	out.Summary(stats, cfg.BackupDir(), cfg.DryRun)

	switch {
	case err != nil:
		return err
	case !stats.OK():
		return errReported
	}
	return nil
}

// noBackup stands in for the store during dry runs, where nothing is written.
type noBackup struct{}

func (noBackup) Backup(string) (string, error) {
	return "", errors.New("backup requested during dry run")
}
