package main

import (
	"github.com/wwwzy/aixcollect/internal/cli"
	"os"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
