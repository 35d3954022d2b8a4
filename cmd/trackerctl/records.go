package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func kindArg(args []string) (core.Kind, error) {
	return core.ParseKind(args[0])
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list income|expense",
		Short:     "List the records of one kind, newest first",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"income", "expense"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(l *services.Ledger) error {
				svc, err := l.For(kind)
				if err != nil {
					return err
				}
				records, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				return writeRecords(a.out, records, false)
			})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var title, amount, category, description, date string

	cmd := &cobra.Command{
		Use:   "add income|expense",
		Short: "Add a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			p := core.Payload{Title: title, Category: strings.ToLower(strings.TrimSpace(category)), Description: description}
			if p.Amount, err = core.ParseAmount(amount); err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			if p.Date, err = core.ParseDate(date); err != nil {
				return fmt.Errorf("date: %w", err)
			}

			return a.withLedger(cmd.Context(), func(l *services.Ledger) error {
				svc, err := l.For(kind)
				if err != nil {
					return err
				}
				tx, err := svc.Create(cmd.Context(), p)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s added: %s\n", kind.Label(), tx.ID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "record title")
	f.StringVar(&amount, "amount", "", "positive amount, dot or comma decimals")
	f.StringVar(&category, "category", "", "category of the kind")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&date, "date", time.Now().UTC().Format(core.DateLayout), "calendar day YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete income|expense ID",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(l *services.Ledger) error {
				svc, err := l.For(kind)
				if err != nil {
					return err
				}
				if err := svc.Delete(cmd.Context(), args[1]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s deleted: %s\n", kind.Label(), args[1])
				return nil
			})
		},
	}
}

// writeRecords prints one aligned row per record. withType adds the kind
// column used by the combined table.
func writeRecords(w io.Writer, records []core.Transaction, withType bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if withType {
		fmt.Fprintln(tw, "ID\tTYPE\tDATE\tTITLE\tCATEGORY\tAMOUNT")
	} else {
		fmt.Fprintln(tw, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT")
	}
	for _, tx := range records {
		if withType {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Kind, tx.Date, tx.Title, tx.Category, tx.Amount.StringFixed(2))
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.Date, tx.Title, tx.Category, tx.Amount.StringFixed(2))
		}
	}
	return tw.Flush()
}
