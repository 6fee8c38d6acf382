package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/kmilos/fitsrec/internal/recio"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file> <offset> <n>",
	Short: "Hex-dump n bytes starting at offset, read via the engine's get_bytes",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing offset: %w", err)
		}
		n, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing n: %w", err)
		}

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

		if err := eng.SeekTo(file, offset, recio.ReportEOF); err != nil {
			return err
		}
		buf := make([]byte, n)
		if err := eng.GetBytes(file, buf); err != nil {
			return err
		}

		fmt.Print(hex.Dump(buf))
		return nil
	},
}
