package main

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/erp_ledger/internal/middleware"
	"github.com/SscSPs/erp_ledger/internal/platform/storage"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return storage.Migrate(a.cfg, a.logger)
		},
	}
}

func newSeedAccountsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-accounts",
		Short: "Create the standard chart of accounts if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				accounts, err := svc.Account.SeedStandardAccounts(cmd.Context(), a.actor)
				if err != nil {
					return err
				}
				return printJSON(cmd, accounts)
			})
		},
	}
}

func newPeriodCmd(a *app) *cobra.Command {
	period := &cobra.Command{
		Use:   "period",
		Short: "List and transition fiscal periods",
	}

	var year int
	list := &cobra.Command{
		Use:   "list",
		Short: "List fiscal periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				var filter *int
				if year != 0 {
					filter = &year
				}
				periods, err := svc.FiscalPeriod.ListPeriods(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return printJSON(cmd, periods)
			})
		},
	}
	list.Flags().IntVar(&year, "year", 0, "only periods of this fiscal year")

	transition := func(use, short string, pick func(portssvc.FiscalPeriodSvcFacade) periodAction) *cobra.Command {
		return &cobra.Command{
			Use:   use + " PERIOD_ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
					p, err := pick(svc.FiscalPeriod)(cmd.Context(), args[0], a.actor)
					if err != nil {
						return err
					}
					return printJSON(cmd, p)
				})
			},
		}
	}

	period.AddCommand(
		list,
		transition("close", "Close an open period", func(s portssvc.FiscalPeriodSvcFacade) periodAction { return s.Close }),
		transition("lock", "Lock a closed period against further posting", func(s portssvc.FiscalPeriodSvcFacade) periodAction { return s.Lock }),
		transition("reopen", "Reopen a closed or locked period", func(s portssvc.FiscalPeriodSvcFacade) periodAction { return s.Reopen }),
	)
	return period
}

type periodAction func(ctx context.Context, periodID, actorID string) (*domain.FiscalPeriod, error)

func newAgingCmd(a *app) *cobra.Command {
	var asOf string
	aging := &cobra.Command{
		Use:       "aging ar|ap",
		Short:     "Print receivables or payables aging buckets",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"ar", "ap"},
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateFlag(asOf)
			if err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				calc := svc.Reporting.CalculateARAging
				switch args[0] {
				case "ar":
				case "ap":
					calc = svc.Reporting.CalculateAPAging
				default:
					return fmt.Errorf("unknown aging side %q, use ar or ap", args[0])
				}
				buckets, err := calc(cmd.Context(), &date)
				if err != nil {
					return err
				}
				return printJSON(cmd, buckets)
			})
		},
	}
	aging.Flags().StringVar(&asOf, "as-of", "", "aging date YYYY-MM-DD (default today)")
	return aging
}

func newMarkOverdueCmd(a *app) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "mark-overdue",
		Short: "Move past-due invoices and bills to OVERDUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			date, err := parseDateFlag(asOf)
			if err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				resp, err := svc.Receivables.MarkOverdue(cmd.Context(), date, a.actor)
				if err != nil {
					return err
				}
				return printJSON(cmd, resp)
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "sweep date YYYY-MM-DD (default today)")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Report entry groups whose debits and credits differ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				groups, err := svc.Reporting.FindUnbalancedGroups(cmd.Context())
				if err != nil {
					return err
				}
				if err := printJSON(cmd, groups); err != nil {
					return err
				}
				if len(groups) > 0 {
					return fmt.Errorf("%d unbalanced entry groups", len(groups))
				}
				return nil
			})
		},
	}
}

func newTokenCmd(a *app) *cobra.Command {
	var ttl time.Duration
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Sign an API bearer token for --actor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ttl <= 0 {
				ttl = a.cfg.JWTExpiryDuration
			}
			token, err := middleware.IssueToken(a.cfg.JWTSecret, a.cfg.JWTIssuer, a.actor, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]string{"token": token, "actor": a.actor})
		},
	}
	issue.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_EXPIRY_DURATION)")

	token := &cobra.Command{Use: "token", Short: "Manage API tokens"}
	token.AddCommand(issue)
	return token
}
