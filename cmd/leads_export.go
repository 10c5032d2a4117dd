package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/lead"
)

var (
	exportOut    string
	exportStatus string
)

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to an XLSX spreadsheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		// Page through everything matching the filter.
		var leads []lead.Lead
		svc := lead.NewService(st)
		for offset := 0; ; {
			page, err := svc.List(ctx, lead.Filter{
				Status: lead.Status(exportStatus),
				Limit:  500,
				Offset: offset,
			})
			if err != nil {
				return err
			}
			leads = append(leads, page.Items...)
			offset += len(page.Items)
			if offset >= page.Total || len(page.Items) == 0 {
				break
			}
		}

		if err := writeLeadsXLSX(exportOut, leads); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %d leads to %s\n", len(leads), exportOut)
		return nil
	},
}

var exportHeader = []string{
	"ID", "Business Name", "Contact", "Email", "Phone", "Website", "Website Score",
	"City", "Business Type", "Source", "Status", "Estimated Value", "Tags", "Created At",
}

// writeLeadsXLSX writes the leads to a single-sheet spreadsheet.
func writeLeadsXLSX(path string, leads []lead.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	row := sheet.AddRow()
	for _, h := range exportHeader {
		row.AddCell().Value = h
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().Value = l.ID
		row.AddCell().Value = l.BusinessName
		row.AddCell().Value = l.ContactPerson
		row.AddCell().Value = l.Email
		row.AddCell().Value = l.Phone
		row.AddCell().Value = l.WebsiteURL
		if l.WebsiteScore != nil {
			row.AddCell().SetInt(*l.WebsiteScore)
		} else {
			row.AddCell()
		}
		row.AddCell().Value = l.City
		row.AddCell().Value = l.BusinessType
		row.AddCell().Value = string(l.Source)
		row.AddCell().Value = string(l.Status)
		if l.EstimatedValue != nil {
			row.AddCell().SetInt(*l.EstimatedValue)
		} else {
			row.AddCell()
		}
		row.AddCell().Value = strings.Join(l.Tags, ", ")
		row.AddCell().Value = l.CreatedAt.Format("2006-01-02 15:04:05")
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func init() {
	leadsExportCmd.Flags().StringVar(&exportOut, "out", "leads.xlsx", "output file path")
	leadsExportCmd.Flags().StringVar(&exportStatus, "status", "", "filter by status")
	leadsCmd.AddCommand(leadsExportCmd)
}
