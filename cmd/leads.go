package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/homesignal/leadscore/internal/model"
	"github.com/homesignal/leadscore/internal/store"
)

var (
	leadsIntent   string
	leadsMinScore int
	leadsLimit    int
	leadsOffset   int
	leadsOut      string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect stored lead records",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored lead records",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		filter, err := leadFilterFromFlags()
		if err != nil {
			return err
		}

		recs, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tINITIAL\tRERANKED\tINTENT\tSCORED AT")
		for _, rec := range recs {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
				rec.ID, rec.InitialScore, rec.RerankedScore, rec.IntentLevel,
				rec.Timestamp.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored lead records to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		filter, err := leadFilterFromFlags()
		if err != nil {
			return err
		}

		recs, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		if err := writeLeadWorkbook(leadsOut, recs); err != nil {
			return err
		}

		zap.L().Info("leads exported",
			zap.String("path", leadsOut),
			zap.Int("rows", len(recs)),
		)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{leadsListCmd, leadsExportCmd} {
		c.Flags().StringVar(&leadsIntent, "intent", "", "filter by intent level")
		c.Flags().IntVar(&leadsMinScore, "min-score", 0, "minimum reranked score")
		c.Flags().IntVar(&leadsLimit, "limit", 100, "max records")
		c.Flags().IntVar(&leadsOffset, "offset", 0, "records to skip")
	}
	leadsExportCmd.Flags().StringVar(&leadsOut, "out", "leads.xlsx", "output workbook path")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}

func leadFilterFromFlags() (store.LeadFilter, error) {
	filter := store.LeadFilter{
		MinScore: leadsMinScore,
		Limit:    leadsLimit,
		Offset:   leadsOffset,
	}
	if leadsIntent != "" {
		level := model.IntentLevel(leadsIntent)
		if !level.Valid() {
			return filter, eris.Errorf("unknown intent level %q", leadsIntent)
		}
		filter.IntentLevel = level
	}
	return filter, nil
}

// writeLeadWorkbook renders records as a single-sheet xlsx file.
func writeLeadWorkbook(path string, recs []model.LeadRecord) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, col := range []string{
		"ID", "Hashed Email", "Hashed Phone", "Initial Score", "Reranked Score",
		"Intent Level", "Explanation", "Comments", "Scored At",
	} {
		header.AddCell().SetString(col)
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetString(rec.ID)
		row.AddCell().SetString(rec.HashedEmail)
		row.AddCell().SetString(rec.HashedPhone)
		row.AddCell().SetInt(rec.InitialScore)
		row.AddCell().SetInt(rec.RerankedScore)
		row.AddCell().SetString(string(rec.IntentLevel))
		row.AddCell().SetString(rec.Explanation)
		row.AddCell().SetString(rec.Comments)
		row.AddCell().SetString(rec.Timestamp.Format(time.RFC3339))
	}

	if err := wb.Save(path); err != nil {
		return eris.Wrap(err, "save workbook")
	}
	return nil
}
