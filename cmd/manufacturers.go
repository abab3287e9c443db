package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var manufacturersCmd = &cobra.Command{
	Use:   "manufacturers",
	Short: "Manage the vendor directory",
}

var manufacturersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List manufacturers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx, "import")
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.ListManufacturers(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			cmd.Println("no manufacturers")
			return nil
		}
		for _, m := range list {
			cmd.Printf("%4d  %-30s %s\n", m.ID, m.Name, m.DefaultProductType)
		}
		return nil
	},
}

var (
	mfrAddName string
	mfrAddType string
)

var manufacturersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a manufacturer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := initStore(ctx, "import")
		if err != nil {
			return err
		}
		defer store.Close()

		m, err := store.AddManufacturer(ctx, mfrAddName, mfrAddType)
		if err != nil {
			return err
		}
		zap.L().Info("manufacturer added", zap.Int64("id", m.ID), zap.String("name", m.Name))
		return nil
	},
}

func init() {
	manufacturersAddCmd.Flags().StringVar(&mfrAddName, "name", "", "manufacturer name (required)")
	manufacturersAddCmd.Flags().StringVar(&mfrAddType, "product-type", "", "default product type for new products")
	_ = manufacturersAddCmd.MarkFlagRequired("name")

	manufacturersCmd.AddCommand(manufacturersListCmd, manufacturersAddCmd)
	rootCmd.AddCommand(manufacturersCmd)
}
