package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/arloliu/eclio"
	"github.com/arloliu/eclio/summary"
	"github.com/urfave/cli/v3"
)

func (st *state) summaryCmd() *cli.Command {
	var (
		baseRun     bool
		reportSteps bool
	)

	return &cli.Command{
		Name:      "summary",
		Usage:     "Print summary vectors; keys may be patterns such as 'WOPR:*'",
		ArgsUsage: "CASE.SMSPEC|CASE.ESMRY KEY...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "base-run", Usage: "include the history of base runs", Destination: &baseRun},
			&cli.BoolFlag{Name: "report-steps", Usage: "print report steps only", Destination: &reportSteps},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return fmt.Errorf("summary expects a case and at least one key")
			}
			if st.cfg.BaseRun != nil && !cmd.IsSet("base-run") {
				baseRun = *st.cfg.BaseRun
			}

			r, err := st.openSummary(cmd.Args().First(), baseRun)
			if err != nil {
				return err
			}
			defer r.Close()

			keys, err := expandKeys(r, cmd.Args().Tail())
			if err != nil {
				return err
			}

			return st.printVectors(r, keys, reportSteps)
		},
	}
}

func (st *state) openSummary(path string, baseRun bool) (summary.Reader, error) {
	return eclio.OpenSummary(path, summary.WithBaseRun(baseRun), summary.WithLogger(st.logger))
}

// expandKeys resolves patterns, keeping the order of the arguments and
// dropping repeats.
func expandKeys(r summary.Reader, args []string) ([]string, error) {
	var keys []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[") {
			if !r.HasKey(arg) {
				return nil, fmt.Errorf("unknown summary key %q", arg)
			}
			if !slices.Contains(keys, arg) {
				keys = append(keys, arg)
			}

			continue
		}

		matched, err := r.KeysMatching(arg)
		if err != nil {
			return nil, err
		}
		if len(matched) == 0 {
			return nil, fmt.Errorf("no summary key matches %q", arg)
		}
		for _, k := range matched {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}
	}

	return keys, nil
}

func (st *state) printVectors(r summary.Reader, keys []string, reportSteps bool) error {
	if err := r.LoadData(keys...); err != nil {
		return err
	}

	get := r.Get
	var (
		dates []time.Time
		err   error
	)
	if reportSteps {
		get = r.GetAtReportStep
		dates, err = r.DatesAtReportStep()
	} else {
		dates, err = r.Dates()
	}
	if err != nil {
		return err
	}

	cols := make([][]float32, len(keys))
	for i, k := range keys {
		if cols[i], err = get(k); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(st.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	header := append([]string{"DATE"}, keys...)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for n, d := range dates {
		row := []string{d.Format(time.DateOnly)}
		for i := range keys {
			row = append(row, strconv.FormatFloat(float64(cols[i][n]), 'g', -1, 32))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}

	return tw.Flush()
}
