package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rdharma/folio/internal/config/autoconfig"
	"github.com/rdharma/folio/internal/log"
)

var (
	fConfig string
	fDebug  bool
)

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "folio",
		Short:         "Personal site with a blog, case studies, and an admin editor",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if fDebug {
				log.Set()
			}
			autoconfig.SetConfigFile(fConfig)
		},
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVar(&fConfig, "config", autoconfig.DefaultConfigFile, "Path to the configuration file.")
	pflags.BoolVar(&fDebug, "debug", false, "Log debug output to stderr.")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(fmtCmd())
	cmd.AddCommand(convertCmd())
	cmd.AddCommand(renderCmd())
	cmd.AddCommand(postsCmd())
	cmd.AddCommand(versionCmd())

	return &cmd
}
