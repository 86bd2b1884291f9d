package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/layertrack/internal/audit"
	"github.com/danielpatrickdp/layertrack/internal/fixture"
	"github.com/danielpatrickdp/layertrack/internal/instrument"
	"github.com/danielpatrickdp/layertrack/internal/logging"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON file")
	dbPath := flag.String("db", "", "optional audit db to record into")
	jsonOut := flag.Bool("json", false, "output results as JSON")
	verbose := flag.Bool("v", false, "log adaptation diagnostics to stderr")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--db audit.db] [--json] [--v]")
		os.Exit(2)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
		logging.SetLogger(logger)
		defer logger.Sync()
	}

	if *dbPath != "" {
		store, err := audit.NewStore(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open db: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		instrument.SetObserver(audit.NewRecorder(store))
	}

	f, err := fixture.Load(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	results, summary, err := fixture.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		printJSON(results, summary)
	} else {
		printTable(f, results, summary)
	}

	if errs := fixture.Verify(results, f.Expected); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "mismatch: %v\n", e)
		}
		os.Exit(1)
	}
}

// #endregion main

// #region output

type output struct {
	Results []fixture.Result `json:"results"`
	Summary fixture.Summary  `json:"summary"`
}

func printJSON(results []fixture.Result, summary fixture.Summary) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(output{Results: results, Summary: summary})
}

func printTable(f fixture.Fixture, results []fixture.Result, summary fixture.Summary) {
	if f.Description != "" {
		fmt.Printf("replay: %s\n\n", f.Description)
	}
	fmt.Printf("%-5s %-14s %-24s %s\n", "STEP", "ACTION", "CLASS", "DETAIL")
	for _, r := range results {
		detail := ""
		switch {
		case r.Err != "":
			detail = "error: " + r.Err
		case r.Action == "patch_adapted":
			detail = fmt.Sprintf("missing=%v", r.Missing)
		case r.Action == "construct":
			detail = fmt.Sprintf("instance=%s", r.InstanceID)
		case r.Action == "call":
			detail = fmt.Sprintf("received=%v", r.Received)
		}
		fmt.Printf("%-5d %-14s %-24s %s\n", r.Step, r.Action, r.Class, detail)
	}
	fmt.Printf("\n%d steps: %d constructions, %d patches (%d adapted), %d calls, %d failures\n",
		summary.TotalSteps, summary.Constructions, summary.Patches,
		summary.Adaptations, summary.Calls, summary.Failures)
}

// #endregion output
