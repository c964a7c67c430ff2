package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/punchclock/internal/cli"
	"github.com/Veraticus/punchclock/internal/engine"
)

func batchesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "Manage suspended batches",
		Long: `List and discard batches whose review was deferred.

Resume a batch with "punch review <batch-id>".`,
	}

	cmd.AddCommand(listBatchesCmd())
	cmd.AddCommand(discardBatchCmd())

	return cmd
}

func listBatchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List suspended batches",
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

			batches, err := store.ListBatches(ctx)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("No suspended batches."))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, strings.Join([]string{
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("DOCUMENT"),
				cli.TableHeaderStyle.Render("POLICY"),
				cli.TableHeaderStyle.Render("RECORDS"),
				cli.TableHeaderStyle.Render("OUTSTANDING"),
				cli.TableHeaderStyle.Render("SUSPENDED"),
			}, "\t"))
			for _, b := range batches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					cli.InfoStyle.Render(b.ID),
					b.Document,
					b.Policy,
					len(b.Records),
					b.Outstanding(),
					formatRelativeTime(b.UpdatedAt),
				)
			}
			return w.Flush()
		},
	}
}

func discardBatchCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "discard <batch-id>",
		Short: "Discard a suspended batch without paying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			id := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			snapshot, err := store.GetBatch(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s Batch %s (%s) has %d record(s) awaiting review.\n",
				cli.WarningStyle.Render(cli.WarningIcon),
				cli.InfoStyle.Render(id),
				snapshot.Document,
				snapshot.Outstanding())
			if !confirm(cmd, force, "Discard it?") {
				fmt.Fprintln(out, cli.SubtitleStyle.Render("Discard cancelled."))
				return nil
			}

			if err := engine.Discard(ctx, store, id); err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess("Discarded batch "+id))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
