package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fragmentgrid/pkg/errors"
	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
	"github.com/matzehuels/fragmentgrid/pkg/layout"
	"github.com/matzehuels/fragmentgrid/pkg/pipeline"
	"github.com/matzehuels/fragmentgrid/pkg/store"
)

// layoutFlags holds the flags of the layout command.
type layoutFlags struct {
	output     string
	positions  string
	directions string
	noCache    bool
	refresh    bool
	apply      bool
	backend    string
	dsn        string

	decider        string
	seed           uint64
	gridUnit       float64
	containerWidth float64
	rows           int
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [fragments.json]",
		Short: "Place fragments on the grid",
		Long: `Place fragments on the grid.

With a fragments.json argument the document is read from disk; stored
positions and direction hints come from the document itself or from
--positions and --directions. Without an argument the configured store is
laid out instead.

The layout is written to <input>.layout.json (or layout.json for a store)
and can be drawn with 'preview'. With --apply the new positions and
resolved directions are written back to the input document or the store,
so the next run keeps them.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd, input, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&f.positions, "positions", "", "JSON file mapping fragment ids to stored positions")
	cmd.Flags().StringVar(&f.directions, "directions", "", "JSON file mapping fragment ids to direction hints")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().BoolVar(&f.apply, "apply", false, "write new positions back to the input or store")
	cmd.Flags().StringVar(&f.backend, "store", "", "store backend when no file is given: memory, file, sqlite, mongo")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "store path or connection URI")

	cmd.Flags().StringVar(&f.decider, "decider", "", "direction decider: random, heuristic, horizontal, vertical")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for the random decider")
	cmd.Flags().Float64Var(&f.gridUnit, "grid-unit", 0, "grid cell size in pixels")
	cmd.Flags().Float64Var(&f.containerWidth, "container-width", 0, "container width in pixels")
	cmd.Flags().IntVar(&f.rows, "rows", 0, "grid rows")

	return cmd
}

// runLayout loads the input, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, f layoutFlags) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	var (
		doc *fragment.Document
		st  store.Store
		err error
	)
	if input != "" {
		doc, err = loadLayoutInput(input, f.positions, f.directions)
	} else {
		st, err = c.newStore(ctx, f.backend, f.dsn)
		if err == nil {
			defer st.Close()
			doc, err = store.LoadDocument(ctx, st)
		}
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %d fragments", len(doc.Fragments)))

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.layoutOptions(cmd, f)

	spinner := newSpinner(ctx, "Placing fragments...")
	spinner.Start()
	res, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := f.output
	if outputPath == "" {
		outputPath = defaultLayoutPath(input)
	}
	if err := layout.WriteResultFile(res.Layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if f.apply {
		if err := c.applyLayout(ctx, input, doc, st, res.Layout); err != nil {
			return err
		}
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(res.Stats, res.CacheHit)
	for _, u := range res.Layout.Unplaced {
		printWarning("%s not placed: %s", u.ID, u.Reason)
	}
	if f.apply && len(res.Layout.Patch) > 0 {
		printDetail("Applied %d position changes", len(res.Layout.Patch))
	}
	printNewline()
	printNextStep("Preview", appName+" preview "+outputPath)

	return nil
}

// layoutOptions merges the config file with flags that were set.
func (c *CLI) layoutOptions(cmd *cobra.Command, f layoutFlags) pipeline.Options {
	opts := c.pipelineOptions()
	flags := cmd.Flags()
	if flags.Changed("decider") {
		opts.Decider = f.decider
	}
	if flags.Changed("seed") {
		opts.Seed = f.seed
	}
	if flags.Changed("grid-unit") {
		opts.Config.GridUnit = f.gridUnit
	}
	if flags.Changed("container-width") {
		opts.Config.ContainerWidth = f.containerWidth
	}
	if flags.Changed("rows") {
		opts.Config.Rows = f.rows
	}
	opts.Refresh = f.refresh
	return opts
}

// applyLayout persists the patch to the store, or merges it into the
// input document.
func (c *CLI) applyLayout(ctx context.Context, input string, doc *fragment.Document, st store.Store, res *layout.Result) error {
	if st != nil {
		if err := store.Persist(ctx, st, res); err != nil {
			return fmt.Errorf("persist layout: %w", err)
		}
		return nil
	}

	if doc.Positions == nil {
		doc.Positions = make(map[string]grid.Position, len(res.Patch))
	}
	maps.Copy(doc.Positions, res.Patch)
	if doc.Directions == nil {
		doc.Directions = make(map[string]fragment.Direction, len(res.Directions))
	}
	maps.Copy(doc.Directions, res.Directions)

	if err := fragment.WriteFile(doc, input); err != nil {
		return fmt.Errorf("update %s: %w", input, err)
	}
	c.Logger.Debug("updated input document", "path", input, "patched", len(res.Patch))
	return nil
}

// loadLayoutInput reads a fragment document and optional side files.
// Side files replace the document's own maps.
func loadLayoutInput(path, positionsPath, directionsPath string) (*fragment.Document, error) {
	doc, err := fragment.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load fragments %s: %w", path, err)
	}
	if positionsPath != "" {
		pos := map[string]grid.Position{}
		if err := readJSONFile(positionsPath, &pos); err != nil {
			return nil, err
		}
		doc.Positions = pos
	}
	if directionsPath != "" {
		dirs := map[string]fragment.Direction{}
		if err := readJSONFile(directionsPath, &dirs); err != nil {
			return nil, err
		}
		doc.Directions = dirs
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", path)
	}
	return nil
}

// defaultLayoutPath derives the output path from the input path.
func defaultLayoutPath(input string) string {
	if input == "" {
		return "layout.json"
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".layout.json"
}
