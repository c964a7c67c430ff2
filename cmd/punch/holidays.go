package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchclock/internal/cli"
	"github.com/Veraticus/punchclock/internal/model"
	"github.com/Veraticus/punchclock/internal/normalize"
)

func holidaysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage holidays paid at the holiday rate",
		Long: `Add, list, and remove holidays. Work on a holiday is paid at the
holiday factor (double by default). Holidays listed under "holidays" in the
config file apply as well.`,
		Example: `  punch holidays add 2025-12-25 "Christmas"
  punch holidays add 01/05/2025 "Labour Day"
  punch holidays list --from 2025-01-01 --to 2025-12-31
  punch holidays remove 2025-12-25`,
	}

	cmd.AddCommand(addHolidayCmd())
	cmd.AddCommand(listHolidaysCmd())
	cmd.AddCommand(removeHolidayCmd())

	return cmd
}

// parseHolidayDate accepts any date layout the normalizer understands.
func parseHolidayDate(value string, order normalize.DateOrder) (string, error) {
	date, err := normalize.ParseDate(value, order)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", value, err)
	}
	return date, nil
}

func addHolidayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <date> [name]",
		Short: "Add or rename a holiday",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			date, err := parseHolidayDate(args[0], cfg.Input.DateOrder)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			holiday := &model.Holiday{Date: date}
			if len(args) == 2 {
				holiday.Name = args[1]
			}
			if err := store.SaveHoliday(ctx, holiday); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Saved holiday "+date))
			return nil
		},
	}
}

func listHolidaysCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored holidays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			start, end := "0000-01-01", "9999-12-31"
			if from != "" {
				if start, err = parseHolidayDate(from, cfg.Input.DateOrder); err != nil {
					return err
				}
			}
			if to != "" {
				if end, err = parseHolidayDate(to, cfg.Input.DateOrder); err != nil {
					return err
				}
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			holidays, err := store.GetHolidaysBetween(ctx, start, end)
			if err != nil {
				return err
			}
			for _, h := range cfg.Holidays {
				if h.Date >= start && h.Date <= end {
					holidays = append(holidays, model.Holiday{Date: h.Date, Name: h.Name + " (config)"})
				}
			}

			slices.SortStableFunc(holidays, func(a, b model.Holiday) int {
				return strings.Compare(a.Date, b.Date)
			})

			if len(holidays) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No holidays found."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join([]string{
				cli.TableHeaderStyle.Render("DATE"),
				cli.TableHeaderStyle.Render("NAME"),
			}, "\t"))
			for _, h := range holidays {
				fmt.Fprintf(w, "%s\t%s\n", h.Date, h.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Earliest date to list")
	cmd.Flags().StringVar(&to, "to", "", "Latest date to list")

	return cmd
}

func removeHolidayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date>",
		Short: "Remove a stored holiday",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			date, err := parseHolidayDate(args[0], cfg.Input.DateOrder)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteHoliday(ctx, date); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Removed holiday "+date))
			return nil
		},
	}
}
