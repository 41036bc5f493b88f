package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/arloliu/eclio"
	"github.com/arloliu/eclio/eclfile"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

type listEntry struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Count  int64  `yaml:"count"`
	Offset int64  `yaml:"offset"`
}

type listing struct {
	Path        string      `yaml:"path"`
	Kind        string      `yaml:"kind"`
	Formatted   bool        `yaml:"formatted"`
	Compression string      `yaml:"compression"`
	Arrays      []listEntry `yaml:"arrays"`
}

func (st *state) listCmd() *cli.Command {
	var asYAML bool

	return &cli.Command{
		Name:      "list",
		Usage:     "Print the keyword index of a file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yaml", Usage: "print YAML instead of a table", Destination: &asYAML},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("list expects one file, got %d arguments", cmd.Args().Len())
			}

			l, err := st.index(cmd.Args().First())
			if err != nil {
				return err
			}

			if asYAML {
				enc := yaml.NewEncoder(st.stdout)
				enc.SetIndent(2)
				if err := enc.Encode(l); err != nil {
					return err
				}

				return enc.Close()
			}

			tw := tabwriter.NewWriter(st.stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tTYPE\tCOUNT")
			for _, e := range l.Arrays {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.Type, e.Count)
			}

			return tw.Flush()
		},
	}
}

func (st *state) index(path string) (*listing, error) {
	f, err := eclio.Open(path, eclfile.WithLogger(st.logger))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kind, _ := eclio.Detect(path)
	l := &listing{Path: path, Kind: kind.String(), Formatted: f.Formatted(), Compression: f.Compression().String()}
	for i, e := range f.List() {
		off, err := f.Offset(i)
		if err != nil {
			return nil, err
		}
		l.Arrays = append(l.Arrays, listEntry{Name: e.Name, Type: e.Tag(), Count: e.Count, Offset: off})
	}
	st.logger.Debug("listed file", "path", path, "arrays", len(l.Arrays))

	return l, nil
}
