package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "layerctl",
	Short: "Layerctl is a command line tool for interacting with the layerplane controller",
	Long: `layerctl is the command-line interface for the layerplane publish controller.

layerplane creates publish jobs for geospatial layers, publishes layer metadata
to the metadata repository and reports how far each publish has been deployed
to the slave servers.

Common workflows:

  Create jobs for publishes:
    layerctl jobs create roads rivers

  Publish layer metadata:
    layerctl meta publish public:roads public:rivers

  Check the sync status of a publish:
    layerctl status roads

Configuration:
  Set the API endpoint and credentials via flags, environment variables or
  $HOME/.layerctl.yaml:
    LAYERPLANE_URL        API endpoint (default: http://localhost:6161)
    LAYERPLANE_USER       Basic auth user
    LAYERPLANE_PASSWORD   Basic auth password`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".layerctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".layerctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "LAYERPLANE_VARNAME"
	viper.SetEnvPrefix("LAYERPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.layerctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "layerplane controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("user", "u", "", "user for basic authentication")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.PersistentFlags().String("password", "", "password for basic authentication")
	viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
}

// clientFromConfig builds a client from the resolved url and credentials.
func clientFromConfig() *LayerClient {
	return NewLayerClient(viper.GetString("url"), viper.GetString("user"), viper.GetString("password"))
}
