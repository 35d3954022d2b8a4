package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/view"
)

func newTableCmd(a *app) *cobra.Command {
	var search, typ, date, bucket, sortKey, dir string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the combined, filtered and sorted transaction table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sortCfg := view.DefaultSort()
			if sortKey != "" {
				key, err := view.ParseSortKey(sortKey)
				if err != nil {
					return err
				}
				sortCfg = sortCfg.Request(key)
			}
			if dir != "" {
				d, err := view.ParseDirection(dir)
				if err != nil {
					return err
				}
				sortCfg.Direction = d
			}

			filter := view.Filter{Search: search}
			var err error
			if filter.Type, err = view.ParseTypeFilter(typ); err != nil {
				return err
			}
			if filter.Amount, err = view.ParseBucket(bucket); err != nil {
				return err
			}
			if date != "" {
				if filter.Date, err = core.ParseDate(date); err != nil {
					return err
				}
			}

			return a.withLedger(cmd.Context(), func(l *services.Ledger) error {
				incomes, expenses, err := l.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				table := view.Build(incomes, expenses, sortCfg, filter)
				if table.Empty {
					fmt.Fprintln(a.out, "No transactions match.")
				} else if err := writeRecords(a.out, table.Rows, true); err != nil {
					return err
				}
				fmt.Fprintln(a.out)
				writeTotals(a.out, table.Totals)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&search, "search", "", "case-insensitive text in title or description")
	f.StringVar(&typ, "type", "all", "all, income or expense")
	f.StringVar(&date, "date", "", "exact calendar day YYYY-MM-DD")
	f.StringVar(&bucket, "amount", "", "<100, 100-500, 500-1000 or >1000")
	f.StringVar(&sortKey, "sort", "", "date, title, description, amount or type")
	f.StringVar(&dir, "dir", "", "asc or desc")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print totals, amount ranges and the latest records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if recent < 0 {
				return fmt.Errorf("recent must not be negative")
			}
			return a.withLedger(cmd.Context(), func(l *services.Ledger) error {
				incomes, expenses, err := l.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				dash := view.BuildDashboard(incomes, expenses, recent)
				writeTotals(a.out, dash.Totals)
				writeRange(a.out, "Income range", dash.IncomeRange)
				writeRange(a.out, "Expense range", dash.ExpenseRange)
				if len(dash.Recent) > 0 {
					fmt.Fprintln(a.out)
					return writeRecords(a.out, dash.Recent, true)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&recent, "recent", view.DefaultRecent, "number of latest records to show")
	return cmd
}

func writeTotals(w io.Writer, t core.Totals) {
	fmt.Fprintf(w, "Total income:   %s\n", t.Income.StringFixed(2))
	fmt.Fprintf(w, "Total expenses: %s\n", t.Expenses.StringFixed(2))
	fmt.Fprintf(w, "Balance:        %s\n", t.Balance.StringFixed(2))
}

func writeRange(w io.Writer, label string, r *core.AmountRange) {
	if r == nil {
		fmt.Fprintf(w, "%s: none\n", label)
		return
	}
	fmt.Fprintf(w, "%s: %s - %s\n", label, r.Min.StringFixed(2), r.Max.StringFixed(2))
}
