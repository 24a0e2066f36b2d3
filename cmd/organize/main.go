// Command organize runs the pipeline once: extracted packing-slip text in,
// printable HTML pull sheet out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/codyseavey/pullsheet/internal/database"
	"github.com/codyseavey/pullsheet/internal/render"
	"github.com/codyseavey/pullsheet/internal/services"
)

func main() {
	input := flag.String("input", "", "path to the extracted packing-slip text (required)")
	output := flag.String("output", "pull_sheet.html", "path for the rendered HTML pull sheet")
	dbPath := flag.String("db", "", "sqlite cache path (defaults to DB_PATH or ./pullsheet.db)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall deadline for the run")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	path := *dbPath
	if path == "" {
		path = os.Getenv("DB_PATH")
	}
	if path == "" {
		path = "./pullsheet.db"
	}
	if err := database.Initialize(path); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	raw, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *input, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")

	scryfallService := services.NewScryfallService()
	setResolver := services.NewSetResolver(scryfallService, database.GetDB())
	attributeResolver, err := services.NewAttributeResolver(scryfallService, setResolver, database.GetDB())
	if err != nil {
		log.Fatalf("Failed to initialize resolver: %v", err)
	}
	organizer := services.NewOrganizer(setResolver, attributeResolver)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	slip, err := organizer.Organize(ctx, lines)
	if err != nil {
		log.Fatalf("Failed to organize slip: %v", err)
	}

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer out.Close()

	if err := render.WriteHTML(out, slip); err != nil {
		log.Fatalf("Failed to render pull sheet: %v", err)
	}

	summary := slip.Summary
	fmt.Printf("Wrote %s: %d cards across %d line items, $%.2f total\n",
		*output, summary.TotalCards, summary.TotalLineItems, summary.TotalValue)
	if summary.UnresolvedColors > 0 {
		fmt.Printf("%d records could not be color-resolved and are grouped under Unknown\n", summary.UnresolvedColors)
	}
	if summary.UnattributableLines > 0 {
		fmt.Printf("%d lines could not be attributed to any record\n", summary.UnattributableLines)
	}
}
