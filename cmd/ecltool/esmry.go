package main

import (
	"context"
	"fmt"

	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/summary"
	"github.com/urfave/cli/v3"
)

func (st *state) esmryCmd() *cli.Command {
	var (
		replace  bool
		compress string
	)

	return &cli.Command{
		Name:      "esmry",
		Usage:     "Build the ESMRY cache of a summary case",
		ArgsUsage: "CASE.SMSPEC",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "replace", Usage: "overwrite an existing ESMRY file", Destination: &replace},
			&cli.StringFlag{Name: "compress", Usage: "compress the cache (zstd, s2, lz4)", Destination: &compress},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("esmry expects one SMSPEC file, got %d arguments", cmd.Args().Len())
			}
			if !cmd.IsSet("compress") {
				compress = st.cfg.Compression
			}
			comp, err := format.ParseCompression(compress)
			if err != nil {
				return err
			}

			s, err := summary.Open(cmd.Args().First(), summary.WithLogger(st.logger))
			if err != nil {
				return err
			}
			defer s.Close()

			opts := []summary.CacheOption{summary.WithCacheCompression(comp)}
			if replace {
				opts = append(opts, summary.WithReplace())
			}

			written, err := s.MakeESmryFile(opts...)
			if err != nil {
				return err
			}
			if !written {
				_, _ = fmt.Fprintf(st.stdout, "%s exists; use --replace to rebuild\n", s.ESmryPath())
				return nil
			}
			_, _ = fmt.Fprintf(st.stdout, "wrote %s (%d vectors, %d steps)\n", s.ESmryPath(), len(s.Keys()), s.NumSteps())

			return nil
		},
	}
}
