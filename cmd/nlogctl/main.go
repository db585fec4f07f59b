// Command nlogctl inspects and drives channel configurations.
//
//	nlogctl check -c nlog.yaml
//	nlogctl emit -c nlog.yaml --channel audit --level warn --field id=42 "invoice voided"
//	nlogctl watch -c nlog.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(NewConfig())
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		stop()
		os.Exit(1)
	}
}
