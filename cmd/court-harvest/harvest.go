// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/court-harvest/internal/api"
	"github.com/pdiddy/court-harvest/internal/convert"
	"github.com/pdiddy/court-harvest/internal/fetch"
	"github.com/pdiddy/court-harvest/internal/output"
	"github.com/pdiddy/court-harvest/internal/pipeline"
	"github.com/pdiddy/court-harvest/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest <case-url>",
	Short: "Download and extract the documents of one court case",
	Long: `Harvest fetches the case page, extracts the text of up to --max-docs
linked PDFs, and writes one text file per document (or a single merged
file with --merge) plus a manifest.yaml into the output directory. With
--keep-pdfs the downloaded PDFs are saved under pdfs/ as well.

The output directory defaults to court_case_<case number>, taken from the
cn query parameter of the case URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().Bool("merge", false, "combine all documents into one file")
	harvestCmd.Flags().String("output-dir", "", "directory for the text files (default: court_case_<cn>)")
	harvestCmd.Flags().Int("max-docs", 0, "maximum documents per run (default 5)")
	harvestCmd.Flags().Duration("delay", 0, "pause between consecutive downloads (default 1s)")
	harvestCmd.Flags().Duration("timeout", 0, "per-document download timeout (default 60s)")
	harvestCmd.Flags().Bool("json", false, "print the API response as JSON instead of writing files")
	harvestCmd.Flags().Bool("keep-pdfs", false, "also save the downloaded PDFs under <output-dir>/pdfs")

	_ = viper.BindPFlag("harvest.max_documents", harvestCmd.Flags().Lookup("max-docs"))
	_ = viper.BindPFlag("harvest.fetch_delay", harvestCmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("harvest.document_timeout", harvestCmd.Flags().Lookup("timeout"))

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	merge, _ := cmd.Flags().GetBool("merge")
	outDir, _ := cmd.Flags().GetString("output-dir")
	asJSON, _ := cmd.Flags().GetBool("json")
	keepPDFs, _ := cmd.Flags().GetBool("keep-pdfs")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.New(&http.Client{}, cfg.Harvest.HTTPConfig, logger)
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	var pdfs []types.FetchedDocument
	if keepPDFs && !asJSON {
		opts = append(opts, pipeline.WithFetchHook(func(d types.FetchedDocument) {
			pdfs = append(pdfs, d)
		}))
	}
	p := pipeline.New(fetcher, convert.NewPDFConverter(), cfg.Harvest, opts...)

	caseURL := args[0]
	res, err := p.Run(ctx, caseURL, merge)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(api.Response(res))
	}

	if res.TotalLinksFound == 0 {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), api.NoLinksMessage)
		return nil
	}

	if outDir == "" {
		outDir = output.DirFromURL(caseURL)
	}
	files, err := output.Write(outDir, caseURL, res, pdfs...)
	if err != nil {
		return fmt.Errorf("saving documents: %w", err)
	}
	printSummary(cmd.OutOrStdout(), res, files)
	return nil
}

// printSummary reports the files written and any dropped documents.
func printSummary(w io.Writer, res *types.Result, files []string) {
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	dim := color.New(color.Faint)

	ok.Fprintf(w, "Processed %d of %d PDFs\n", res.ProcessedCount, res.TotalLinksFound)
	for _, f := range files {
		dim.Fprintf(w, "  %s\n", f)
	}
	for _, f := range res.Failures {
		warn.Fprintf(w, "  skipped document %d (%s): %s\n", f.ID, f.Stage, f.Message)
	}
	if res.Note != "" {
		warn.Fprintln(w, res.Note)
	}
}
