package commands

import (
	"fmt"

	"github.com/caspernetworks/casper/src/version"
	"github.com/spf13/cobra"
)

//NewVersionCmd returns the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Version)
		},
	}
}
