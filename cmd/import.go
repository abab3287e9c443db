package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/summitfloors/pricebook/internal/catalog"
	"github.com/summitfloors/pricebook/internal/fileio"
	"github.com/summitfloors/pricebook/internal/importer"
	"github.com/summitfloors/pricebook/internal/ingest"
	"github.com/summitfloors/pricebook/internal/model"
	"github.com/summitfloors/pricebook/internal/profile"
	"github.com/summitfloors/pricebook/internal/review"
)

var (
	importFile        string
	importProfileName string
	importMappingJSON string
	importStrategy    string
	importMfrID       int64
	importProductType string
	importSamples     string
	importSheet       string
	importSkipRows    int
	importApply       bool
	importYes         bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Preview a vendor price list against the catalog, optionally apply it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx, "import")
		if err != nil {
			return err
		}
		defer store.Close()

		strategy, err := model.ParseStrategy(pick(importStrategy, cfg.Import.DefaultStrategy))
		if err != nil {
			return err
		}

		rules, err := loadRules(ctx, store)
		if err != nil {
			return err
		}
		defaults := rules.Defaults
		if importMfrID != 0 {
			defaults.ManufacturerID = importMfrID
		}
		if importProductType != "" {
			defaults.ProductType = importProductType
		}

		skip := importSkipRows
		if !cmd.Flags().Changed("skip-rows") {
			skip = cfg.Import.SkipRows
		}
		rows, err := fileio.ReadFile(importFile, fileio.Options{SheetName: importSheet, SkipRows: skip})
		if err != nil {
			return err
		}

		candidates := ingest.MapRows(rows, rules.Mapping)
		zap.L().Info("file mapped",
			zap.String("file", importFile),
			zap.Int("rows", len(rows)),
			zap.Int("candidates", len(candidates)),
		)

		svc := importer.NewService(store)
		res, err := svc.Preview(ctx, importer.PreviewRequest{
			Candidates: candidates,
			Strategy:   strategy,
			Defaults:   defaults,
		})
		if err != nil {
			return err
		}

		set := review.NewSet(res.Rows)
		if importSamples != "" {
			action, err := review.ParseBulkAction(importSamples)
			if err != nil {
				return err
			}
			if err := set.ApplyBulk(action); err != nil {
				return err
			}
		}

		printPreview(cmd, set.Rows())

		if !importApply {
			cmd.Println("\ndry run; pass --apply to commit")
			return nil
		}
		eligible := review.Eligible(set.Rows())
		if !importYes {
			cmd.Printf("\napply %d row(s)? pass --yes to confirm\n", len(eligible))
			return nil
		}

		summary, err := svc.Execute(ctx, importer.ExecuteRequest{
			Rows:     set.Rows(),
			Strategy: strategy,
			Defaults: res.Defaults,
		})
		if err != nil {
			return err
		}
		cmd.Printf("\napplied: %d updated, %d created\n", summary.Updates, summary.Created)
		return nil
	},
}

// loadRules resolves the column mapping: a saved profile by name, or inline
// JSON (either the versioned rules payload or a bare field-to-column map).
func loadRules(ctx context.Context, store catalog.Store) (model.MappingRules, error) {
	switch {
	case importProfileName != "" && importMappingJSON != "":
		return model.MappingRules{}, eris.New("use --profile or --mapping, not both")
	case importProfileName != "":
		p, err := store.GetProfile(ctx, importProfileName)
		if err != nil {
			return model.MappingRules{}, err
		}
		return p.Rules, nil
	case importMappingJSON != "":
		return profile.DecodeRules([]byte(importMappingJSON))
	}
	return model.MappingRules{}, eris.New("either --profile or --mapping is required")
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func printPreview(cmd *cobra.Command, rows []model.MatchResult) {
	counts := map[model.MatchStatus]int{}
	for _, r := range rows {
		counts[r.Status]++
	}
	cmd.Printf("%d rows: %d new, %d update, %d match, %d error\n",
		len(rows), counts[model.StatusNew], counts[model.StatusUpdate],
		counts[model.StatusMatch], counts[model.StatusError])

	for _, r := range review.DisplayOrder(rows) {
		if r.Status == model.StatusMatch {
			continue
		}
		line := fmt.Sprintf("  [%s] %s", r.Status, r.ProductName)
		if r.Candidate.VariantName != "" {
			line += " / " + r.Candidate.VariantName
		}
		if r.Message != "" {
			line += "  (" + r.Message + ")"
		}
		cmd.Println(line)
	}
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to CSV or XLSX price list (required)")
	importCmd.Flags().StringVar(&importProfileName, "profile", "", "saved mapping profile name")
	importCmd.Flags().StringVar(&importMappingJSON, "mapping", "", `inline mapping JSON, e.g. '{"productName":0,"unitCost":3}'`)
	importCmd.Flags().StringVar(&importStrategy, "strategy", "", "variant_match or product_line_match (default from config)")
	importCmd.Flags().Int64Var(&importMfrID, "manufacturer", 0, "default manufacturer id for new products")
	importCmd.Flags().StringVar(&importProductType, "product-type", "", "default product type for new products")
	importCmd.Flags().StringVar(&importSamples, "samples", "", "bulk sample action: all, none, or line_board")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	importCmd.Flags().IntVar(&importSkipRows, "skip-rows", 0, "header rows to skip (default from config)")
	importCmd.Flags().BoolVar(&importApply, "apply", false, "apply eligible rows after preview")
	importCmd.Flags().BoolVar(&importYes, "yes", false, "skip the apply confirmation")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
