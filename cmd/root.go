/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	logger  = zap.NewNop()
	// stopProfile ends a profile started by --profile
	stopProfile interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dgops",
	Short: "Element and face operators for nodal discontinuous Galerkin methods",
	Long: `
Builds a 1D nodal discontinuous Galerkin discretization and exercises its
element-wise and face coupling operators.

dgops residual -k 32 -n 4
dgops bench -k 10000 -n 7 --iterations 50`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if logger, err = newLogger(viper.GetBool("verbose")); err != nil {
			return
		}
		stopProfile, err = startProfile(viper.GetString("profile"), viper.GetString("profileDir"))
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopProfile != nil {
			stopProfile.Stop()
			stopProfile = nil
		}
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dgops.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "development logging at debug level")
	rootCmd.PersistentFlags().String("profile", "", "write a profile while running: cpu or mem")
	rootCmd.PersistentFlags().String("profileDir", ".", "directory for profile output")
	for _, key := range []string{"verbose", "profile", "profileDir"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".dgops" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".dgops")
	}

	viper.SetEnvPrefix("DGOPS")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func startProfile(kind, dir string) (stop interface{ Stop() }, err error) {
	switch strings.ToLower(kind) {
	case "":
	case "cpu":
		stop = profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook)
	case "mem":
		stop = profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.NoShutdownHook)
	default:
		err = fmt.Errorf("unknown profile %q, want cpu or mem", kind)
	}
	return
}
