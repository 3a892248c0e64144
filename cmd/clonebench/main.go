package main

import (
	"fmt"
	"os"
	"time"

	"github.com/china-tjj/cloner"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

var (
	roots      int
	depth      int
	breadth    int
	configPath string
	dump       bool
)

var rootCmd = &cobra.Command{
	Use:          "clonebench",
	Short:        "Compare a generated deep-copy routine with a hand-written one",
	RunE:         runBench,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().IntVar(&roots, "roots", 100, "number of root records")
	rootCmd.Flags().IntVar(&depth, "depth", 5, "nesting depth of each record tree")
	rootCmd.Flags().IntVar(&breadth, "breadth", 5, "children per record")
	rootCmd.Flags().StringVar(&configPath, "config", "", "yaml registry config")
	rootCmd.Flags().BoolVar(&dump, "dump", false, "dump the first cloned record")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadRegistry() (*cloner.Registry, error) {
	var cfg cloner.Config
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("could not open config: %w", err)
		}
		defer f.Close()
		if cfg, err = cloner.LoadConfig(f); err != nil {
			return nil, err
		}
	}
	return cloner.NewRegistryFromConfig(cfg, cloner.WithScalar[Decimal]())
}

func runBench(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	g := &generator{depth: depth, breadth: breadth}
	input := make([]*Record, roots)
	for i := range input {
		input[i] = g.build(0)
	}

	start := time.Now()
	c, err := cloner.GetCloner[*Record](registry)
	if err != nil {
		return fmt.Errorf("could not generate cloner: %w", err)
	}
	generated := time.Since(start)

	native := make([]*Record, len(input))
	output := make([]*Record, len(input))
	// 预热
	for i := range input {
		native[i] = input[i].Clone()
		output[i] = c.Clone(input[i])
	}

	start = time.Now()
	for i := range input {
		native[i] = input[i].Clone()
	}
	nativeElapsed := time.Since(start)

	start = time.Now()
	for i := range input {
		output[i] = c.Clone(input[i])
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	for i := range input {
		if !cmp.Equal(input[i], output[i]) || !cmp.Equal(native[i], output[i]) {
			return fmt.Errorf("clone %d differs from its source: %s", i, cmp.Diff(input[i], output[i]))
		}
	}
	if dump && len(output) > 0 {
		spew.Fdump(out, output[0])
	}
	fields := 0
	for _, r := range input {
		fields += r.countFields()
	}
	fmt.Fprintf(out, "records: %d, total fields: %d, composites: %d\n", g.counter, fields, registry.Len())
	fmt.Fprintf(out, "generation: %s\n", generated)
	fmt.Fprintf(out, "total time: %s, per root: %s\n", elapsed, elapsed/time.Duration(max(1, roots)))
	fmt.Fprintf(out, "total time native: %s, per root: %s\n", nativeElapsed, nativeElapsed/time.Duration(max(1, roots)))
	return nil
}
