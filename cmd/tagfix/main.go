// Command tagfix repairs the Title and Artist separators of the audio
// files in one directory.
//
// Run without arguments it processes the directory holding the executable,
// backing up every file it changes into a "backup" subdirectory:
//
//	tagfix
//	tagfix --dir ~/Music/Incoming --dry-run
//	tagfix scan --dir ~/Music/Incoming
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// errReported ends a run whose problems were already printed.
var errReported = errors.New("run finished with errors")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
