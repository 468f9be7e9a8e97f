// Command metadump dumps the table, column and constraint catalog of a
// MySQL, Postgres or SQL Server database into metadata.json.
//
// Run with:
//
//	metadump
//	metadump --engine postgres --host db.internal --user app --database shop
//	METADUMP_PASSWORD=secret metadump --config metadump.yaml
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}, nil)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
