package cli

import (
	"errors"
	"fmt"
	"strconv"

	"gudang/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// ErrMirrorDisabled is returned by export when no mirror is configured.
var ErrMirrorDisabled = errors.New("postgres mirror is not enabled, set DB_ENABLED=true")

// NewRootCommand creates the gudang command tree. Without a subcommand it starts the menu.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gudang",
		Short:         "Single-user inventory tracker",
		Long:          "gudang keeps a product inventory in a JSON file and offers an interactive menu as well as one-shot commands.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, app)
		},
	}

	rootCmd.AddCommand(NewMenuCommand(app))
	rootCmd.AddCommand(NewListCommand(app))
	rootCmd.AddCommand(NewAddCommand(app))
	rootCmd.AddCommand(NewUpdateCommand(app))
	rootCmd.AddCommand(NewDeleteCommand(app))
	rootCmd.AddCommand(NewSearchCommand(app))
	rootCmd.AddCommand(NewFilterCommand(app))
	rootCmd.AddCommand(NewBackupCommand(app))
	rootCmd.AddCommand(NewExportCommand(app))

	return rootCmd
}

// NewMenuCommand creates the menu command
func NewMenuCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, app)
		},
	}
}

func runMenu(cmd *cobra.Command, app *App) error {
	menu := NewMenu(app.Products, cmd.InOrStdin(), cmd.OutOrStdout(), app.Logger)
	return menu.Run(cmd.Context())
}

func (app *App) ops(cmd *cobra.Command) *operations {
	return newOperations(app.Products, cmd.OutOrStdout(), app.Logger.With().Str("component", "command").Logger())
}

// NewListCommand creates the list command
func NewListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ops(cmd).list(cmd.Context())
		},
	}
}

// NewAddCommand creates the add command
func NewAddCommand(app *App) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := productInputFromFlags(cmd)
			if err != nil {
				return err
			}
			return app.ops(cmd).add(cmd.Context(), in)
		},
	}

	addProductFlags(addCmd)
	return addCmd
}

// NewUpdateCommand creates the update command
func NewUpdateCommand(app *App) *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace name, quantity and price of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in, err := productInputFromFlags(cmd)
			if err != nil {
				return err
			}
			return app.ops(cmd).update(cmd.Context(), id, in)
		},
	}

	addProductFlags(updateCmd)
	return updateCmd
}

// NewDeleteCommand creates the delete command
func NewDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.ops(cmd).delete(cmd.Context(), id)
		},
	}
}

// NewSearchCommand creates the search command
func NewSearchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find products whose name contains keyword, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ops(cmd).search(cmd.Context(), args[0])
		},
	}
}

// NewFilterCommand creates the filter command
func NewFilterCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <min-price>",
		Short: "List products priced at or above min-price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minPrice, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", args[0], err)
			}
			return app.ops(cmd).filter(cmd.Context(), minPrice)
		},
	}
}

// NewBackupCommand creates the backup command with subcommands
func NewBackupCommand(app *App) *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the data file",
		Long:  "Write a gzip-compressed snapshot of the data file to the backup location (create, list, restore)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createBackup(cmd, app)
		},
	}

	backupCmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Write a new snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createBackup(cmd, app)
		},
	})

	backupCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List available snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.Snapshots.List(cmd.Context())
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed to list snapshots: %v\n", err)
				return fmt.Errorf("%w: %w", ErrOperationFailed, err)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d snapshot(s) available.\n", len(names))
			return nil
		},
	})

	backupCmd.AddCommand(&cobra.Command{
		Use:   "restore <name>",
		Short: "Replace the data file with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := app.Snapshots.Restore(cmd.Context(), args[0])
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed to restore snapshot: %v\n", err)
				return fmt.Errorf("%w: %w", ErrOperationFailed, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d product(s) from %s.\n", count, args[0])
			return nil
		},
	})

	return backupCmd
}

func createBackup(cmd *cobra.Command, app *App) error {
	name, err := app.Snapshots.Backup(cmd.Context())
	if err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Failed to write snapshot: %v\n", err)
		return fmt.Errorf("%w: %w", ErrOperationFailed, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written: %s\n", name)
	return nil
}

// NewExportCommand creates the export command
func NewExportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Copy all products into the Postgres reporting mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.OpenMirror == nil {
				return ErrMirrorDisabled
			}

			ctx := cmd.Context()
			products, err := app.Products.List(ctx)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed to list products: %v\n", err)
				return fmt.Errorf("%w: %w", ErrOperationFailed, err)
			}

			mirror, closeMirror, err := app.OpenMirror(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect to mirror: %w", err)
			}
			defer closeMirror()

			if err := mirror.EnsureSchema(ctx); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed to prepare mirror: %v\n", err)
				return fmt.Errorf("%w: %w", ErrOperationFailed, err)
			}

			rows, err := mirror.Export(ctx, products)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed to export products: %v\n", err)
				return fmt.Errorf("%w: %w", ErrOperationFailed, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d product(s) to the mirror.\n", rows)
			return nil
		},
	}
}

func addProductFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Product name (required)")
	cmd.Flags().Int("quantity", 0, "Quantity in stock")
	cmd.Flags().String("price", "0", "Unit price, for example 2.5")
	_ = cmd.MarkFlagRequired("name")
}

func productInputFromFlags(cmd *cobra.Command) (model.ProductInput, error) {
	name, _ := cmd.Flags().GetString("name")
	quantity, _ := cmd.Flags().GetInt("quantity")
	rawPrice, _ := cmd.Flags().GetString("price")

	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return model.ProductInput{}, fmt.Errorf("invalid price %q: %w", rawPrice, err)
	}

	return model.ProductInput{
		Name:     name,
		Quantity: quantity,
		Price:    price,
	}, nil
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid product ID %q", raw)
	}
	return id, nil
}
