package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadgen-cli/internal/lead"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export CRM leads",
}

var (
	leadsListStatus string
	leadsListCity   string
	leadsListSearch string
	leadsListLimit  int
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		page, err := lead.NewService(st).List(ctx, lead.Filter{
			Search: leadsListSearch,
			Status: lead.Status(leadsListStatus),
			City:   leadsListCity,
			Limit:  leadsListLimit,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCITY\tTYPE\tSTATUS\tWEB")
		for _, l := range page.Items {
			score := "-"
			if l.WebsiteScore != nil {
				score = fmt.Sprintf("%d", *l.WebsiteScore)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				l.ID, l.BusinessName, l.City, l.BusinessType, l.Status, score)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d leads\n", len(page.Items), page.Total)
		return nil
	},
}

var leadsShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one lead with its activity log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc := lead.NewService(st)
		l, err := svc.Get(ctx, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", l.BusinessName, l.ID)
		fmt.Fprintf(out, "  status: %s  source: %s  type: %s\n", l.Status, l.Source, l.BusinessType)
		if l.City != "" {
			fmt.Fprintf(out, "  city: %s\n", l.City)
		}
		if l.WebsiteURL != "" {
			score := "-"
			if l.WebsiteScore != nil {
				score = fmt.Sprintf("%d/10", *l.WebsiteScore)
			}
			fmt.Fprintf(out, "  website: %s (score %s)\n", l.WebsiteURL, score)
		}
		if l.Phone != "" {
			fmt.Fprintf(out, "  phone: %s\n", l.Phone)
		}

		activities, err := svc.Activities(ctx, l.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "activities (%d):\n", len(activities))
		for _, a := range activities {
			fmt.Fprintf(out, "  %s  [%s] %s\n", a.CreatedAt.Format("2006-01-02 15:04"), a.Type, a.Title)
		}
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsListStatus, "status", "", "filter by status")
	leadsListCmd.Flags().StringVar(&leadsListCity, "city", "", "filter by city")
	leadsListCmd.Flags().StringVar(&leadsListSearch, "search", "", "free-text search")
	leadsListCmd.Flags().IntVar(&leadsListLimit, "limit", 50, "maximum rows")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	rootCmd.AddCommand(leadsCmd)
}
