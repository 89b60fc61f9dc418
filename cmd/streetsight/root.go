package cmd

import (
	"fmt"
	"os"
	"strings"

	// Subcommands
	download "github.com/streetsight/streetsight/cmd/streetsight/download"
	run "github.com/streetsight/streetsight/cmd/streetsight/run"
	"github.com/streetsight/streetsight/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "STREETSIGHT"

var Cmd = &cobra.Command{
	Use:   "streetsight",
	Short: "Street infrastructure classifier",
	Long:  "Serves an image classification model that detects street infrastructure issues and assigns each detection an operational priority",

	// Runs before this command and any subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix(envPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer(
			`-`, `_`,
			`.`, `_`,
		))
		viper.AutomaticEnv()

		// Bind all flags from the current command and persistent parent flags
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		return config.LoadEnvAndConfigFiles()
	},
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pflags := Cmd.PersistentFlags()

	pflags.String("home-dir", "", "Path to the streetsight home directory")
	pflags.String("config-file", "", "Path to the config file")
	pflags.String("env-file", "", "Path to the env file")

	viper.BindPFlag("home_dir", pflags.Lookup("home-dir"))
	viper.BindPFlag("config_file", pflags.Lookup("config-file"))
	viper.BindPFlag("env_file", pflags.Lookup("env-file"))

	Cmd.AddCommand(run.Cmd, download.Cmd)
	Cmd.CompletionOptions.HiddenDefaultCmd = true
}
