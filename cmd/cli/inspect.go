package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"mongo-admin/internal/admin/domain/service"
	"mongo-admin/internal/admin/usecase"
	"mongo-admin/internal/di"
	"mongo-admin/internal/shared/logger"
	"mongo-admin/internal/shared/utils"

	"github.com/spf13/cobra"
)

func newCollectionsCmd() *cobra.Command {
	var (
		tenant     string
		withSchema bool
	)

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List a tenant's collections",
		Example: `  mongo-admin collections --tenant acme
  mongo-admin collections --tenant acme --schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsecase(cmd.Context(), func(ctx context.Context, uc usecase.AdminUsecase) error {
				listing, err := uc.ListCollections(utils.WithTenantID(ctx, tenant), withSchema)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), listing)
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant (organization) id")
	cmd.Flags().BoolVar(&withSchema, "schema", false, "infer and include each collection's schema")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	var (
		tenant     string
		collection string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Infer the schema of one tenant collection",
		Example: `  mongo-admin schema --tenant acme --collection orders
  mongo-admin schema --tenant acme --collection orders --format openapi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "native" && format != "openapi" {
				return fmt.Errorf("unsupported format %q (use native or openapi)", format)
			}
			return withUsecase(cmd.Context(), func(ctx context.Context, uc usecase.AdminUsecase) error {
				schema, err := uc.GetSchema(utils.WithTenantID(ctx, tenant), collection)
				if err != nil {
					return err
				}
				if format == "openapi" {
					return printJSON(cmd.OutOrStdout(), service.OpenAPISchema(schema).Value)
				}
				return printJSON(cmd.OutOrStdout(), schema)
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant (organization) id")
	cmd.Flags().StringVar(&collection, "collection", "", "logical collection name")
	cmd.Flags().StringVar(&format, "format", "native", "output format: native or openapi")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}

// withUsecase connects to the store, runs fn and tears everything down.
func withUsecase(parent context.Context, fn func(context.Context, usecase.AdminUsecase) error) error {
	if parent == nil {
		parent = context.Background()
	}
	log := logger.NewLogger()
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	// Inspection never needs the audit log.
	cfg.Redis.Enabled = false

	container := di.NewContainer(cfg, log)
	defer func() {
		_ = container.Cleanup(context.Background())
	}()

	ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
	defer cancel()
	if err := container.ConnectMongo(ctx); err != nil {
		return err
	}
	if err := container.InitializeAdmin(); err != nil {
		return err
	}
	return fn(ctx, container.GetAdminModule().AdminUsecase)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
