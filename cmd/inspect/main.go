package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/layertrack/internal/audit"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to layertrack audit db")
	last := flag.Int("last", 20, "show N most recent entries")
	kind := flag.String("kind", "all", "which log to show: constructions|adaptations|all")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/audit.db [--last N] [--kind constructions|adaptations|all] [--json]")
		os.Exit(2)
	}

	store, err := audit.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *kind == "constructions" || *kind == "all" {
		if err := showConstructions(store, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if *kind == "adaptations" || *kind == "all" {
		if err := showAdaptations(store, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region constructions

type constructionRow struct {
	InstanceID string          `json:"instance_id"`
	ClassName  string          `json:"class_name"`
	Config     json.RawMessage `json:"config"`
	CreatedAt  string          `json:"created_at"`
}

func showConstructions(store *audit.Store, last int, jsonOut bool) error {
	entries, err := store.ListConstructions(last)
	if err != nil {
		return err
	}
	if jsonOut {
		rows := make([]constructionRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, constructionRow{
				InstanceID: e.InstanceID,
				ClassName:  e.ClassName,
				Config:     json.RawMessage(e.ConfigJSON),
				CreatedAt:  e.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Printf("%-38s %-24s %-20s %s\n", "INSTANCE", "CLASS", "CREATED", "CONFIG")
	for _, e := range entries {
		fmt.Printf("%-38s %-24s %-20s %s\n",
			e.InstanceID, e.ClassName, e.CreatedAt.Format("2006-01-02 15:04:05"), e.ConfigJSON)
	}
	return nil
}

// #endregion constructions

// #region adaptations

type adaptationRow struct {
	ClassName string          `json:"class_name"`
	Method    string          `json:"method"`
	Missing   json.RawMessage `json:"missing"`
	CreatedAt string          `json:"created_at"`
}

func showAdaptations(store *audit.Store, last int, jsonOut bool) error {
	entries, err := store.ListAdaptations(last)
	if err != nil {
		return err
	}
	if jsonOut {
		rows := make([]adaptationRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, adaptationRow{
				ClassName: e.ClassName,
				Method:    e.Method,
				Missing:   json.RawMessage(e.MissingJSON),
				CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Printf("%-24s %-10s %-20s %s\n", "CLASS", "METHOD", "CREATED", "MISSING")
	for _, e := range entries {
		fmt.Printf("%-24s %-10s %-20s %s\n",
			e.ClassName, e.Method, e.CreatedAt.Format("2006-01-02 15:04:05"), e.MissingJSON)
	}
	return nil
}

// #endregion adaptations
