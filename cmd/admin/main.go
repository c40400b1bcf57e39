// Command admin provisions back-office accounts and payment terms.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"workshop-funnel/config"
	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/repository"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/database"
	"workshop-funnel/pkg/jwt"
	applogger "workshop-funnel/pkg/logger"
	"workshop-funnel/pkg/validation"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Workshop funnel administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("WF_CONFIG"), "path to config file")

	root.AddCommand(createAdminCmd(), resetPasswordCmd(), seedTermsCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds the services a command needs plus a cleanup func
type app struct {
	cfg    *config.Config
	svc    *service.Service
	sqlDB  *sql.DB
	logger *zap.Logger
	close  func()
}

func bootstrap() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := validation.RegisterGin(); err != nil {
		return nil, err
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, logger)

	return &app{
		cfg:    cfg,
		svc:    svc,
		sqlDB:  sqlDB,
		logger: logger,
		close: func() {
			sqlDB.Close()
			logger.Sync()
		},
	}, nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func createAdminCmd() *cobra.Command {
	var req dto.CreateAdminRequest
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a back-office admin account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := binding.Validator.ValidateStruct(&req); err != nil {
				return fmt.Errorf("invalid input: %s", validation.Describe(err))
			}

			ctx, cancel := commandContext()
			defer cancel()

			admin, err := a.svc.Admin.Create(ctx, &req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s admin %s (%s)\n", admin.AdminRole, admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (letters and digits, 8+ chars)")
	cmd.Flags().StringVar(&req.AdminRole, "role", "admin", "admin or super_admin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an existing admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := commandContext()
			defer cancel()

			if err := a.svc.Admin.ResetPassword(ctx, email, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func seedTermsCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed-terms",
		Short: "Store the configured default payment terms as the active record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := commandContext()
			defer cancel()

			active, err := a.svc.PaymentTerms.GetActive(ctx)
			if err != nil {
				return err
			}
			if !active.IsDefault && !force {
				fmt.Fprintf(cmd.OutOrStdout(), "active terms %s already stored, use --force to replace\n", active.ID)
				return nil
			}

			rev := a.cfg.Revenue
			terms, err := a.svc.PaymentTerms.Update(ctx, &dto.UpdatePaymentTermsRequest{
				EnrollmentCommissionRate: &rev.EnrollmentCommissionRate,
				AttendanceCommissionRate: &rev.AttendanceCommissionRate,
				Currency:                 rev.Currency,
				PayoutFrequency:          rev.PayoutFrequency,
				PayoutDay:                rev.PayoutDay,
				MinimumPayoutAmount:      &rev.MinimumPayoutAmount,
				Notes:                    "seeded from configuration",
			}, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active terms %s: %.2f%% enrollment, %.2f%% attendance, %s payout\n",
				terms.ID, terms.EnrollmentCommissionRate, terms.AttendanceCommissionRate, terms.PayoutFrequency)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace stored active terms")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.RunMigrations(a.sqlDB, a.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
