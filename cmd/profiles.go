package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/summitfloors/pricebook/internal/model"
	"github.com/summitfloors/pricebook/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage saved mapping profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved mapping profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx, "import")
		if err != nil {
			return err
		}
		defer store.Close()

		profiles, err := store.ListProfiles(ctx)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			cmd.Println("no profiles saved")
			return nil
		}
		for _, p := range profiles {
			cmd.Printf("%-30s %d column(s) mapped, updated %s\n",
				p.Name, len(p.Rules.Mapping), p.UpdatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var (
	profileSaveName    string
	profileSaveMapping string
)

var profilesSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Create or overwrite a mapping profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx, "import")
		if err != nil {
			return err
		}
		defer store.Close()

		rules, err := profile.DecodeRules([]byte(profileSaveMapping))
		if err != nil {
			return err
		}

		p, err := store.SaveProfile(ctx, profileSaveName, rules)
		if err != nil {
			return err
		}
		zap.L().Info("profile saved", zap.String("name", p.Name), zap.Int64("id", p.ID))
		return nil
	},
}

// profileYAML is the export/import file shape. It mirrors the stored rules
// but in YAML, so a vendor's mapping can live in version control.
type profileYAML struct {
	Name     string         `yaml:"name"`
	Version  int            `yaml:"version"`
	Mapping  map[string]int `yaml:"mapping"`
	Defaults struct {
		ManufacturerID int64  `yaml:"manufacturer_id,omitempty"`
		ProductType    string `yaml:"product_type,omitempty"`
	} `yaml:"defaults,omitempty"`
}

var profileExportFile string

var profilesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all mapping profiles to a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx, "import")
		if err != nil {
			return err
		}
		defer store.Close()

		profiles, err := store.ListProfiles(ctx)
		if err != nil {
			return err
		}

		out := make([]profileYAML, 0, len(profiles))
		for _, p := range profiles {
			y := profileYAML{
				Name:    p.Name,
				Version: p.Rules.Version,
				Mapping: make(map[string]int, len(p.Rules.Mapping)),
			}
			for k, col := range p.Rules.Mapping {
				y.Mapping[string(k)] = col
			}
			y.Defaults.ManufacturerID = p.Rules.Defaults.ManufacturerID
			y.Defaults.ProductType = p.Rules.Defaults.ProductType
			out = append(out, y)
		}

		data, err := yaml.Marshal(out)
		if err != nil {
			return eris.Wrap(err, "profiles: marshal yaml")
		}
		if err := os.WriteFile(profileExportFile, data, 0o644); err != nil {
			return eris.Wrap(err, "profiles: write export file")
		}
		cmd.Printf("exported %d profile(s) to %s\n", len(out), profileExportFile)
		return nil
	},
}

var profileImportFile string

var profilesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import mapping profiles from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx, "import")
		if err != nil {
			return err
		}
		defer store.Close()

		data, err := os.ReadFile(profileImportFile)
		if err != nil {
			return eris.Wrap(err, "profiles: read import file")
		}
		var in []profileYAML
		if err := yaml.Unmarshal(data, &in); err != nil {
			return eris.Wrap(err, "profiles: parse yaml")
		}

		for _, y := range in {
			mapping := make(model.ColumnMapping, len(y.Mapping))
			for k, col := range y.Mapping {
				mapping[model.FieldKey(k)] = col
			}
			rules := model.MappingRules{
				Version: profile.CurrentVersion,
				Mapping: mapping,
				Defaults: model.ImportDefaults{
					ManufacturerID: y.Defaults.ManufacturerID,
					ProductType:    y.Defaults.ProductType,
				},
			}
			if err := rules.Mapping.Validate(); err != nil {
				return eris.Wrapf(err, "profiles: profile %q", y.Name)
			}
			if _, err := store.SaveProfile(ctx, y.Name, rules); err != nil {
				return err
			}
		}
		cmd.Printf("imported %d profile(s)\n", len(in))
		return nil
	},
}

func init() {
	profilesSaveCmd.Flags().StringVar(&profileSaveName, "name", "", "profile name (required)")
	profilesSaveCmd.Flags().StringVar(&profileSaveMapping, "mapping", "", "mapping JSON (required)")
	_ = profilesSaveCmd.MarkFlagRequired("name")
	_ = profilesSaveCmd.MarkFlagRequired("mapping")

	profilesExportCmd.Flags().StringVar(&profileExportFile, "file", "profiles.yaml", "output file")
	profilesImportCmd.Flags().StringVar(&profileImportFile, "file", "", "input file (required)")
	_ = profilesImportCmd.MarkFlagRequired("file")

	profilesCmd.AddCommand(profilesListCmd, profilesSaveCmd, profilesExportCmd, profilesImportCmd)
	rootCmd.AddCommand(profilesCmd)
}
