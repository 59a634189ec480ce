// Command smtool inspects Source Map v3 files: it renders the
// token-to-source alignment, resolves generated positions, and emits
// visualizer links.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srcweave/sourcemap"
)

func main() {
	root := &cobra.Command{
		Use:           "smtool",
		Short:         "Inspect Source Map v3 files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(getCmdVisualize())
	root.AddCommand(getCmdLookup())
	root.AddCommand(getCmdURL())

	if err := root.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func loadMap(path string) (*sourcemap.SourceMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	smap, err := sourcemap.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"tokens":  smap.Len(),
		"sources": smap.SourceCount(),
		"names":   smap.NameCount(),
	}).Debug("parsed source map")
	return smap, nil
}

func getCmdVisualize() *cobra.Command {
	return &cobra.Command{
		Use:   "visualize <map> <generated-file>",
		Short: "Print the token-to-source alignment of a map",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			smap, err := loadMap(args[0])
			if err != nil {
				return err
			}
			code, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			viz := sourcemap.NewVisualizer(string(code), smap)
			fmt.Fprint(cmd.OutOrStdout(), viz.Text())
			return nil
		},
	}
}

func getCmdURL() *cobra.Command {
	return &cobra.Command{
		Use:   "url <map> <generated-file>",
		Short: "Print an evanw source-map-visualization link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			smap, err := loadMap(args[0])
			if err != nil {
				return err
			}
			code, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			viz := sourcemap.NewVisualizer(string(code), smap)
			fmt.Fprintln(cmd.OutOrStdout(), viz.URL())
			return nil
		},
	}
}

func getCmdLookup() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <map> <line> <column>",
		Short: "Resolve a generated position (0-based) to its original position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			smap, err := loadMap(args[0])
			if err != nil {
				return err
			}
			line, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				return fmt.Errorf("bad line %q: %w", args[1], err)
			}
			col, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("bad column %q: %w", args[2], err)
			}

			view, ok := smap.LookupSourceView(uint32(line), uint32(col))
			if !ok {
				return fmt.Errorf("no mapping at %d:%d", line, col)
			}
			source, _ := view.Source()
			out := fmt.Sprintf("%s:%d:%d", source, view.Token.SrcLine, view.Token.SrcCol)
			if name, ok := view.Name(); ok {
				out += " (" + name + ")"
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
