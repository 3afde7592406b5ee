package cli

import (
	"fmt"

	"mongo-admin/internal/admin/config"
	"mongo-admin/internal/shared/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit string) error {
	return newRootCmd(version, commit).Execute()
}

func newRootCmd(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mongo-admin",
		Short: "Multi-tenant MongoDB admin API",
		Long: `mongo-admin exposes the collections of each tenant in a shared MongoDB database
as a REST API: collection discovery, schema inference from sampled documents,
paginated queries and guarded single/bulk mutations.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCollectionsCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

// loadConfig reads the optional dotenv file, then the environment.
func loadConfig(log logger.Logger) (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			log.Debugf("No env file loaded from %s: %v", envFile, err)
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
