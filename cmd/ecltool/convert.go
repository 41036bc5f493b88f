package main

import (
	"context"
	"fmt"

	"github.com/arloliu/eclio/eclfile"
	"github.com/arloliu/eclio/format"
	"github.com/arloliu/eclio/resultset"
	"github.com/urfave/cli/v3"
)

func (st *state) convertCmd() *cli.Command {
	var (
		output   string
		compress string
	)

	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert between binary and formatted layout (EGRID <-> FEGRID, X0012 <-> F0012, ...)",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output path (default: counterpart name next to FILE)", Destination: &output},
			&cli.StringFlag{Name: "compress", Usage: "compress the output (zstd, s2, lz4)", Destination: &compress},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("convert expects one file, got %d arguments", cmd.Args().Len())
			}
			if !cmd.IsSet("compress") {
				compress = st.cfg.Compression
			}
			comp, err := format.ParseCompression(compress)
			if err != nil {
				return err
			}

			src := cmd.Args().First()
			if output == "" {
				rs, ext := resultset.FromPath(src)
				toggled, ok := resultset.ToggleExt(ext)
				if !ok {
					return fmt.Errorf("no counterpart extension for %q; use --output", ext)
				}
				output = rs.FileName(toggled)
			}

			n, err := st.convert(src, output, comp)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(st.stdout, "%s -> %s (%d arrays)\n", src, output, n)

			return nil
		},
	}
}

// convert rewrites every array of src in the other layout. Arrays are
// released as soon as they are written.
func (st *state) convert(src, dst string, comp format.CompressionType) (int, error) {
	in, err := eclfile.Open(src, eclfile.WithLogger(st.logger))
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := eclfile.Create(dst,
		eclfile.WithFormatted(!in.Formatted()),
		eclfile.WithCompression(comp),
		eclfile.WithWriterLogger(st.logger),
	)
	if err != nil {
		return 0, err
	}

	for i, e := range in.List() {
		a, err := in.Array(i)
		if err != nil {
			_ = out.Close()
			return i, err
		}
		if err := out.WriteArray(e.Name, a); err != nil {
			_ = out.Close()
			return i, err
		}
		in.Release(i)
	}

	st.logger.Debug("converted file", "src", src, "dst", dst, "compression", comp.String())

	return in.Len(), out.Close()
}
