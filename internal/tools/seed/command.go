package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/glowbook/salon-backend/internal/config"
	"github.com/glowbook/salon-backend/internal/database"
	"github.com/glowbook/salon-backend/internal/tools/common"
	"github.com/glowbook/salon-backend/internal/tools/ui"
)

type options struct {
	envFile             string
	bootstrapAdminEmail string
	ci                  bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.bootstrapAdminEmail, "bootstrap-admin-email", "", "override bootstrap admin email")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply default catalog seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed apply", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				email := cfg.BootstrapAdminEmail
				if opts.bootstrapAdminEmail != "" {
					email = strings.TrimSpace(strings.ToLower(opts.bootstrapAdminEmail))
				}
				report, err := database.SeedSync(db, email)
				if err != nil {
					return nil, err
				}
				details := []string{fmt.Sprintf("created %d catalog services", report.CreatedServices)}
				if report.PromotedAdmin {
					details = append(details, "promoted bootstrap admin: "+email)
				}
				if report.Noop {
					details = append(details, "nothing to do, catalog already seeded")
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed apply", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				cfg, _, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				email := cfg.BootstrapAdminEmail
				if opts.bootstrapAdminEmail != "" {
					email = strings.TrimSpace(strings.ToLower(opts.bootstrapAdminEmail))
				}
				details := []string{
					"would ensure catalog services: " + strings.Join(database.DefaultCatalogNames(), ", "),
				}
				if email != "" {
					details = append(details, "would promote user to admin if present: "+email)
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIResult(err == nil, "seed dry-run", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
