// Package cli wires the rename engine into a standalone command that
// processes an already-built output directory in place.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cidify/internal/cid"
)

// NewRootCommand builds the cidify command. Flags override values from an
// optional .cidify.yaml in the target directory or the working directory.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cidify [flags] <output-dir>",
		Short: "Rename build outputs to content identifiers and rewrite references",
		Long: "cidify renames the files of a finished build to digest-derived names\n" +
			"(CIDv1), rewrites every reference across code, markup, styles and\n" +
			"manifests, and reconciles persisted manifest files on disk.\n" +
			"Markup entry documents keep their names.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			v.SetConfigName(".cidify")
			v.SetConfigType("yaml")
			v.AddConfigPath(args[0])
			v.AddConfigPath(".")
			if err := v.ReadInConfig(); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return err
				}
			}
			for _, name := range []string{"hash", "dry-run", "report", "verbose"} {
				if err := v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
					return err
				}
			}

			inv := Invocation{
				Dir:        args[0],
				Scheme:     v.GetString("hash"),
				DryRun:     v.GetBool("dry-run"),
				ReportPath: v.GetString("report"),
				Verbose:    v.GetBool("verbose"),
			}
			return Execute(cmd.Context(), inv, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("hash", cid.SchemeSHA2, "multihash scheme (sha2-256, blake2b-256)")
	cmd.Flags().Bool("dry-run", false, "print planned renames without modifying the directory")
	cmd.Flags().String("report", "", "write pipeline events as JSON to this path")
	cmd.Flags().BoolP("verbose", "v", false, "debug-level diagnostics on stderr")
	return cmd
}
