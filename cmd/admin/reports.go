package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/qacker/backend/scoresrvc"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNoReportBucket = errors.New("REPORT_BUCKET is not configured")

func newReportCmd() *cobra.Command {
	var reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Performance reports in the report bucket",
	}

	reportCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Upload a compressed performance snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if application.Reports == nil {
				return errNoReportBucket
			}
			url, err := application.ScoreSrvc.ExportPerformance(cmd.Context(), application.Reports)
			if err != nil {
				return err
			}
			log.Info().Str("url", url).Msg("report exported")
			return nil
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List exported reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if application.Reports == nil {
				return errNoReportBucket
			}
			keys, err := application.Reports.ListFiles(cmd.Context(), "reports/")
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	})

	reportCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Download a report and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if application.Reports == nil {
				return errNoReportBucket
			}
			compressed, err := application.Reports.Download(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			raw, err := scoresrvc.DecompressReport(compressed)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(raw, '\n'))
			return err
		},
	})

	return reportCmd
}
