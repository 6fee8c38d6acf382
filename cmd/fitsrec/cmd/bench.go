package cmd

import (
	"bytes"
	"fmt"

	"github.com/kmilos/fitsrec/internal/recio"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var benchRounds int

var benchCmd = &cobra.Command{
	Use:   "bench <files...>",
	Short: "Drive concurrent synthetic read/write load through the engine",
	Long: `bench opens every given file against a single shared engine and
writes/reads a small pattern through each concurrently, exercising
optimal_ndata sizing and TOO_MANY_FILES degradation when the file count
exceeds the configured pool size.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}

		var g errgroup.Group
		for _, path := range args {
			path := path
			g.Go(func() error {
				return benchOneFile(eng, path)
			})
		}

		benchErr := g.Wait()

		stats := eng.Stats()
		fmt.Printf("files:       %d\n", len(args))
		fmt.Printf("optimal_ndata(4B units): %d\n", eng.OptimalNData(4))
		fmt.Printf("hits:        %d\n", stats.Hits)
		fmt.Printf("misses:      %d\n", stats.Misses)
		fmt.Printf("evictions:   %d\n", stats.Evictions)
		fmt.Printf("degraded:    %t\n", stats.Degraded)
		if benchErr != nil {
			return benchErr
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 16, "Number of record-sized write/read rounds per file")
}

func benchOneFile(eng *recio.Engine, path string) error {
	drv, err := openDriver(path, true)
	if err != nil {
		return err
	}
	defer drv.Close()

	file, err := eng.OpenFile(drv, recio.HDUImage)
	if err != nil {
		return err
	}
	defer eng.CloseFile(file)

	pattern := bytes.Repeat([]byte{0xAB}, int(eng.RecordLength()))
	for i := 0; i < benchRounds; i++ {
		pos := int64(i) * eng.RecordLength()
		if err := eng.SeekTo(file, pos, recio.IgnoreEOF); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := eng.PutBytes(file, pattern); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		dst := make([]byte, len(pattern))
		if err := eng.SeekTo(file, pos, recio.IgnoreEOF); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := eng.GetBytes(file, dst); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}
