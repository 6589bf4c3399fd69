// Package cmd contains the command line applications for the project.
package cmd

import (
	"errors"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yeisme/spacedash/pkg/app"
)

var (
	configPath string
	envFiles   []string
	debug      bool

	rootCmd = &cobra.Command{
		Use:          "spacedash",
		Short:        "Storage usage dashboard service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnv(envFiles)
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API, event consumer and snapshot job",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.NewApp(ctx, configPath)
			if err != nil {
				return err
			}

			return a.Run(ctx)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose output")

	rootCmd.AddCommand(serveCmd)

	registerConfigsCommands()
	registerUsageCommands()
	registerStorageCommands()
}

// loadEnv 加载 dotenv 文件，不存在的文件忽略，已有环境变量不被覆盖.
func loadEnv(files []string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
