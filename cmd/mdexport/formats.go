package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	mdexport "github.com/alnah/go-mdexport"
)

func newFormatsCmd(env *Environment) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List export formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printFormats(env)
		},
	}
}

func printFormats(env *Environment) error {
	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXTENSION\tVIA")
	for _, f := range mdexport.Formats() {
		fmt.Fprintf(tw, "%s\t%s\t.%s\t%s\n", f.ID, f.Name, f.Extension, formatVia(f))
	}
	return tw.Flush()
}

func formatVia(f mdexport.Format) string {
	switch {
	case f.HTMLNative:
		return "built-in"
	case f.Browser:
		return "browser"
	}
	return "pandoc"
}
