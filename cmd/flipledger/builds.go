package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	buildsvc "flipledger/internal/application/builds"
	"flipledger/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func parseSKU(s string) (int, error) {
	sku, err := strconv.Atoi(s)
	if err != nil || sku <= 0 {
		return 0, fmt.Errorf("%w: invalid sku %q", domain.ErrInvalidInput, s)
	}
	return sku, nil
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not an amount", domain.ErrInvalidInput, s)
	}
	return d, nil
}

func (c *cli) listCmd() *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.svc.Builds.ListAll(cmd.Context())
			res.Builds = buildsvc.Sorted(res.Builds, sortBy)
			out := cmd.OutOrStdout()
			if c.jsonOut {
				return printJSON(out, res)
			}
			printList(out, res)
			if res.StoreError != "" {
				return fmt.Errorf("build store unreadable: %s", res.StoreError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by sku, list_date, target_profit or total_price")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <sku>",
		Short: "Show one build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := parseSKU(args[0])
			if err != nil {
				return err
			}
			v, err := c.svc.Builds.View(cmd.Context(), sku)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), v)
			}
			printBuild(cmd.OutOrStdout(), *v)
			return nil
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create --file build.json",
		Short: "Add a build described by a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var in buildsvc.CreateInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, file, err)
			}
			b, err := c.svc.Builds.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return printJSON(cmd.OutOrStdout(), domain.NewView(b))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created build %d\n", b.SKU)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with components, costs and list date")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) sellCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "sell <sku> <price>",
		Short: "Mark a build as sold",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := parseSKU(args[0])
			if err != nil {
				return err
			}
			price, err := parseMoney(args[1])
			if err != nil {
				return err
			}
			b, err := c.svc.Builds.MarkSold(cmd.Context(), sku, price, date)
			if err != nil {
				return err
			}
			return c.printResult(cmd, b)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Sell date, YYYY-MM-DD or DD/MM/YYYY (default today)")
	return cmd
}

func (c *cli) costsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "costs <sku> <value>",
		Short: "Replace the extra costs of a build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := parseSKU(args[0])
			if err != nil {
				return err
			}
			v, err := parseMoney(args[1])
			if err != nil {
				return err
			}
			b, err := c.svc.Builds.UpdateExtraCosts(cmd.Context(), sku, v)
			if err != nil {
				return err
			}
			return c.printResult(cmd, b)
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <sku>",
		Short: "Remove a build; its sku is never reused",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := parseSKU(args[0])
			if err != nil {
				return err
			}
			if err := c.svc.Builds.Delete(cmd.Context(), sku); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted build %d\n", sku)
			return nil
		},
	}
}

func (c *cli) imageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image <sku> <path>",
		Short: "Attach a PNG or JPEG photo to a build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := parseSKU(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			b, err := c.svc.Builds.AttachImage(cmd.Context(), sku, filepath.Base(args[1]), f)
			if err != nil {
				return err
			}
			return c.printResult(cmd, b)
		},
	}
}

func (c *cli) printResult(cmd *cobra.Command, b *domain.Build) error {
	v := domain.NewView(b)
	if c.jsonOut {
		return printJSON(cmd.OutOrStdout(), v)
	}
	printBuild(cmd.OutOrStdout(), v)
	return nil
}
