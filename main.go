package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hostrules/whitelist-publisher/pkg/artifact"
	"github.com/hostrules/whitelist-publisher/pkg/config"
	"github.com/hostrules/whitelist-publisher/pkg/generator"
	"github.com/hostrules/whitelist-publisher/pkg/publisher"
)

var (
	configPath string
	verbose    bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "whitelist-publisher",
		Short:         "Generate the host-rule whitelist and publish it to the target repository",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(runCmd(), generateCmd(), syncCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.SugaredLogger {
	var logger *zap.Logger
	if verbose {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	return logger.Sugar()
}

func loadConfig(log *zap.SugaredLogger) (*config.Config, error) {
	cfg, err := config.NewConfigManager(configPath).LoadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded configuration: %s", pretty.Sprint(cfg.Redacted()))
	return cfg, nil
}

// runCmd is the full pipeline; it is what the scheduling platform invokes.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate the whitelist, then commit and push it if the content changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}

			pub, err := publisher.New(cfg, log)
			if err != nil {
				return err
			}

			result, err := pub.Run(cmd.Context())
			if err != nil {
				log.Errorw("run failed", "error", err)
				return err
			}

			fmt.Printf("run %s finished: %s\n", result.RunID, result.State)
			return nil
		},
	}
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate the whitelist artifact without publishing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}

			path, err := generator.FromConfig(cfg, log).Generate(cmd.Context())
			if err != nil {
				log.Errorw("generation failed", "error", err)
				return err
			}

			info, err := artifact.Validate(path)
			if err != nil {
				log.Errorw("artifact validation failed", "error", err)
				return err
			}

			fmt.Printf("generated %s (%d lines)\n", info.Path, info.LineCount)
			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Publish an existing artifact to the target repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			cfg, err := loadConfig(log)
			if err != nil {
				return err
			}

			info, err := artifact.Validate(cfg.ArtifactPath)
			if err != nil {
				log.Errorw("artifact validation failed", "error", err)
				return err
			}
			log.Infow("artifact validated", "lines", info.LineCount)

			client, err := publisher.NewSyncClient(cfg)
			if err != nil {
				return err
			}

			result, err := client.Sync(cmd.Context(), cfg.ArtifactPath)
			if err != nil {
				log.Errorw("sync failed", "error", err)
				return err
			}

			fmt.Printf("sync finished: %s\n", result.Outcome)
			return nil
		},
	}
}
