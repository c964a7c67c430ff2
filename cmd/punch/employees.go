package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/punchclock/internal/cli"
	"github.com/Veraticus/punchclock/internal/model"
)

func employeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Manage per-employee pay rates",
		Long: `Set, list, and remove hourly rate overrides. Employees without an
override are paid payroll.normal_rate. When no premium rate is given it is
derived from the normal rate and the document's source multiplier.`,
		Example: `  punch employees set "Marta Rossi" --rate 8500
  punch employees set Luis --rate 8000 --premium-rate 11000
  punch employees list
  punch employees remove Luis`,
	}

	cmd.AddCommand(setEmployeeCmd())
	cmd.AddCommand(listEmployeesCmd())
	cmd.AddCommand(removeEmployeeCmd())

	return cmd
}

func parseRate(flag, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return d, nil
}

func setEmployeeCmd() *cobra.Command {
	var rate, premium string

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Set an employee's hourly rates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			normal, err := parseRate("rate", rate)
			if err != nil {
				return err
			}
			premiumRate, err := parseRate("premium-rate", premium)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			r := &model.EmployeeRate{Name: strings.TrimSpace(args[0]), NormalRate: normal, PremiumRate: premiumRate}
			if err := store.SaveEmployeeRate(ctx, r); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Saved rates for "+r.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&rate, "rate", "", "Normal hourly rate")
	cmd.Flags().StringVar(&premium, "premium-rate", "", "Premium hourly rate (default: derived from --rate)")

	return cmd
}

func listEmployeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employee rate overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rates, err := store.GetEmployeeRates(ctx)
			if err != nil {
				return err
			}
			if len(rates) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No employee rates set."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join([]string{
				cli.TableHeaderStyle.Render("EMPLOYEE"),
				cli.TableHeaderStyle.Render("RATE"),
				cli.TableHeaderStyle.Render("PREMIUM"),
			}, "\t"))
			for _, r := range rates {
				premium := cli.SubtleStyle.Render("derived")
				if r.PremiumRate.IsPositive() {
					premium = r.PremiumRate.String()
				}
				normal := cli.SubtleStyle.Render("default")
				if r.NormalRate.IsPositive() {
					normal = r.NormalRate.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, normal, premium)
			}
			return w.Flush()
		},
	}
}

func removeEmployeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an employee's rate override",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteEmployeeRate(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed rates for "+args[0]))
			return nil
		},
	}
}
