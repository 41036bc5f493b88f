// Command ecltool inspects, converts and compares ECLIPSE result files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errFilesDiffer) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	st := &state{stdout: stdout, stderr: stderr}

	return &cli.Command{
		Name:      "ecltool",
		Usage:     "Inspect, convert and compare ECLIPSE result files",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     st.globalFlags(),
		Before:    st.before,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			st.listCmd(),
			st.convertCmd(),
			st.esmryCmd(),
			st.compareCmd(),
			st.summaryCmd(),
		},
	}
}
