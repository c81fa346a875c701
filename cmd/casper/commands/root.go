package commands

import (
	"github.com/caspernetworks/casper/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for the casper node
var RootCmd = &cobra.Command{
	Use:              "casper",
	Short:            "casper consensus node",
	TraverseChildren: true,
}
