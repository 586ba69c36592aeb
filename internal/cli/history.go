package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"usermanager/internal/store"

	"github.com/spf13/cobra"
)

type historyList []store.Attempt

func (h historyList) Text() string {
	if len(h) == 0 {
		return "No login attempts recorded."
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tACCOUNT\tOUTCOME\tSTATUS\tTOOK")
	for _, a := range h {
		status, account := "-", "-"
		if a.Account != "" {
			account = a.Account
		}
		if a.Status != 0 {
			status = fmt.Sprint(a.Status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.At.Local().Format(time.DateTime), account, a.Outcome, status, a.Duration.Round(time.Millisecond))
	}
	_ = tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent login attempts from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := app.openJournal(cmd.Context())
			if err != nil {
				return err
			}
			if j == nil {
				return fmt.Errorf("journal is disabled (set journal: true or pass --journal)")
			}
			defer j.Close()

			rows, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, envelope{
				Data: historyList(rows),
				Meta: map[string]any{"journal": j.Path(), "count": len(rows), "limit": limit},
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of attempts (0 = all)")
	return cmd
}
