// Command fitsrec exercises the buffered record I/O engine against real
// files: pool occupancy and counters (stat), raw byte dumps (dump), and
// synthetic concurrent load (bench).
package main

import "github.com/kmilos/fitsrec/cmd/fitsrec/cmd"

func main() {
	cmd.Execute()
}
