package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/truestate/sales/internal/application/sales"
	"github.com/truestate/sales/internal/infrastructure/http/handler"
	"github.com/truestate/sales/internal/ingest"
)

func (a *app) newImportCmd() *cobra.Command {
	var (
		replace   bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import <location>",
		Short: "Import sale records from a CSV file, file:// URL or gs://bucket/object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			src, err := ingest.Opener{}.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			importer := ingest.NewImporter(store, ingest.Config{BatchSize: batchSize, Replace: replace})
			stats, err := importer.Run(ctx, src)
			if err != nil {
				slog.ErrorContext(ctx, "import failed", "location", args[0], "imported", stats.Imported, "error", err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d imported=%d skipped=%d duplicates=%d\n",
				stats.Processed, stats.Imported, stats.Skipped, stats.Duplicates)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete all existing records before importing")
	cmd.Flags().IntVar(&batchSize, "batch-size", ingest.DefaultBatchSize, "records written per batch")
	return cmd
}

// queryFlags are named after the HTTP query parameters they feed.
var queryFlags = []struct {
	name  string
	usage string
}{
	{sales.ParamSearch, "case-insensitive substring of customer name or phone number"},
	{sales.ParamRegions, "comma-separated customer regions"},
	{sales.ParamGenders, "comma-separated genders"},
	{sales.ParamProductCategories, "comma-separated product categories"},
	{sales.ParamTags, "comma-separated tags; a record matches if it has any"},
	{sales.ParamPaymentMethods, "comma-separated payment methods"},
	{sales.ParamAgeMin, "minimum age, inclusive"},
	{sales.ParamAgeMax, "maximum age, inclusive"},
	{sales.ParamDateFrom, "earliest sale date (YYYY-MM-DD or RFC 3339)"},
	{sales.ParamDateTo, "latest sale date (YYYY-MM-DD or RFC 3339)"},
	{sales.ParamSortBy, "date|quantity|customerName"},
	{sales.ParamSortOrder, "asc|desc"},
	{sales.ParamPage, "1-based page number"},
	{sales.ParamPageSize, "records per page"},
}

func (a *app) newQueryCmd() *cobra.Command {
	values := make(map[string]*string, len(queryFlags))

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a sales query and print the result envelope as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			params := sales.Params{}
			for _, f := range queryFlags {
				if cmd.Flags().Changed(f.name) {
					params[f.name] = *values[f.name]
				}
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := sales.NewService(store, sales.Config{DefaultPageSize: a.v.GetInt("default-page-size")})

			start := time.Now()
			page, err := svc.Query(ctx, params)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			slog.DebugContext(ctx, "query completed",
				"total_items", page.TotalItems,
				"duration_ms", time.Since(start).Milliseconds())

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(handler.MapSalesPageToDTO(page))
		},
	}

	for _, f := range queryFlags {
		values[f.name] = cmd.Flags().String(f.name, "", f.usage)
	}
	cmd.Flags().Int("default-page-size", 0, "page size when --pageSize is absent (SALES_DEFAULT_PAGE_SIZE)")
	_ = a.v.BindPFlag("default-page-size", cmd.Flags().Lookup("default-page-size"))
	return cmd
}

func (a *app) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Opening a store applies its migrations.
			_, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			closeStore()

			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", a.v.GetString("storage-type"))
			return nil
		},
	}
}
