package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"metric-fetch/cmd"
)

func main() {
	// 收到SIGINT或SIGTERM时取消所有未完成的查询
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		stop()
		os.Exit(1)
	}
}
