package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/eclio/regression"
	"github.com/urfave/cli/v3"
)

var errFilesDiffer = errors.New("files differ")

func (st *state) compareCmd() *cli.Command {
	var (
		absTol  float64
		relTol  float64
		ignore  []string
		verbose bool
	)

	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare two keyword files array by array",
		ArgsUsage: "REFERENCE CANDIDATE",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "abs-tol", Usage: "absolute tolerance", Destination: &absTol},
			&cli.FloatFlag{Name: "rel-tol", Usage: "relative tolerance", Destination: &relTol},
			&cli.StringSliceFlag{Name: "ignore", Usage: "skip the values of these keywords", Destination: &ignore},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every array, not only failures", Destination: &verbose},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("compare expects two files, got %d arguments", cmd.Args().Len())
			}
			if st.cfg.AbsTolerance != nil && !cmd.IsSet("abs-tol") {
				absTol = *st.cfg.AbsTolerance
			}
			if st.cfg.RelTolerance != nil && !cmd.IsSet("rel-tol") {
				relTol = *st.cfg.RelTolerance
			}

			res, err := regression.CompareFiles(cmd.Args().Get(0), cmd.Args().Get(1),
				regression.WithAbsTolerance(absTol),
				regression.WithRelTolerance(relTol),
				regression.WithIgnore(ignore...),
				regression.WithLogger(st.logger),
			)
			if err != nil {
				return err
			}

			shown := res.Failures()
			if verbose {
				shown = res.Arrays
			}
			for _, d := range shown {
				_, _ = fmt.Fprintln(st.stdout, d.String())
			}
			_, _ = fmt.Fprintln(st.stdout, res.String())

			if !res.Equal() {
				return fmt.Errorf("%w: %d of %d arrays", errFilesDiffer, len(res.Failures()), len(res.Arrays))
			}

			return nil
		},
	}
}
