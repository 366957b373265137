package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	buildsvc "flipledger/internal/application/builds"
	"flipledger/internal/domain"

	"github.com/tidwall/pretty"
)

func printJSON(w io.Writer, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.Pretty(raw))
	return err
}

func printList(w io.Writer, res buildsvc.ListResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tLISTED\tTOTAL\tTARGET\tTARGET PROFIT\tSOLD\tPROFIT")
	for _, v := range res.Builds {
		profit := "-"
		if v.TotalProfit != nil {
			profit = "£" + *v.TotalProfit
		}
		sold := "no"
		if v.Sold {
			sold = v.SellDate
			if sold == "" {
				sold = "yes"
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t£%s\t£%s\t£%s\t%s\t%s\n",
			v.SKU, v.ListDate, v.TotalPrice, v.TargetSellPrice, v.TargetProfit, sold, profit)
	}
	_ = tw.Flush()
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "skipped %s: %s\n", s.SKU, s.Reason)
	}
}

func printBuild(w io.Writer, v domain.BuildView) {
	fmt.Fprintf(w, "Build %d\n", v.SKU)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range v.Components {
		fmt.Fprintf(tw, "  %s\t%s (%s)\t£%s\n", c.Kind, c.Name, c.Brand, c.Price)
		for k, val := range v.Specs[c.Slot] {
			fmt.Fprintf(tw, "  \t  %s: %s\t\n", k, val)
		}
	}
	fmt.Fprintf(tw, "  Extra costs\t\t£%s\n", v.ExtraCosts)
	fmt.Fprintf(tw, "  Total price\t\t£%s\n", v.TotalPrice)
	fmt.Fprintf(tw, "  Target sell price\t\t£%s\n", v.TargetSellPrice)
	fmt.Fprintf(tw, "  Extra profit\t\t£%s\n", v.ExtraProfit)
	fmt.Fprintf(tw, "  Target profit\t\t£%s\n", v.TargetProfit)
	if v.ListDate != "" {
		fmt.Fprintf(tw, "  Listed\t\t%s\n", v.ListDate)
	}
	if v.Sold {
		fmt.Fprintf(tw, "  Sold\t\t£%s on %s\n", v.SellPrice, v.SellDate)
		if v.TotalProfit != nil {
			fmt.Fprintf(tw, "  Profit\t\t£%s\n", *v.TotalProfit)
		}
	}
	if v.ImageFileName != "" {
		fmt.Fprintf(tw, "  Image\t\t%s\n", v.ImageFileName)
	}
	_ = tw.Flush()
}
