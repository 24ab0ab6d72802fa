package main

import (
	"fmt"
	"os"

	"github.com/tonycamero/hedera-africa-hackathon-sub007/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
