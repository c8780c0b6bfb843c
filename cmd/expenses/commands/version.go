package commands

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...commands.Version=v1.2.3".
var Version = "dev"

func newVersionCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			banner := figure.NewFigure("Expenses", "", true)
			fmt.Fprint(rt.out, banner.String())
			fmt.Fprintf(rt.out, "\nexpenses %s\n", Version)
		},
	}
}
