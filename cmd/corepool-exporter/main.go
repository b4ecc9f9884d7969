package main

import (
	"context"

	"corepool-exporter/cmd/corepool-exporter/commands"
	"corepool-exporter/lib/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext(context.Background())
	commands.ExecuteContext(ctx)
}
