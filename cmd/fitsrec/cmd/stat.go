package cmd

import (
	"fmt"

	"github.com/kmilos/fitsrec/internal/recio"
	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <file>",
	Short: "Print pool occupancy, hit/miss counters, and per-file state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}

		drv, err := openDriver(args[0], false)
		if err != nil {
			return err
		}
		defer drv.Close()

		file, err := eng.OpenFile(drv, recio.HDUImage)
		if err != nil {
			return err
		}
		defer eng.CloseFile(file)

		stats := eng.Stats()
		fmt.Printf("file:        %s\n", args[0])
		fmt.Printf("bytepos:     %d\n", file.BytePos)
		fmt.Printf("filesize:    %d\n", file.FileSize)
		fmt.Printf("logfilesize: %d\n", file.LogFileSize)
		fmt.Printf("open_files:  %d\n", eng.NumOpenFiles())
		fmt.Printf("hits:        %d\n", stats.Hits)
		fmt.Printf("misses:      %d\n", stats.Misses)
		fmt.Printf("evictions:   %d\n", stats.Evictions)
		fmt.Printf("flush_bytes: %d\n", stats.FlushBytes)
		fmt.Printf("sparse_fill: %d\n", stats.SparseFillBytes)
		fmt.Printf("degraded:    %t\n", stats.Degraded)
		return nil
	},
}
