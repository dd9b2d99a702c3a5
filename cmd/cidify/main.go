package main

import (
	"context"
	"fmt"
	"os"

	"cidify/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "cidify:", err)
		os.Exit(1)
	}
}
