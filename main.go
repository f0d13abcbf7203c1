package main

import (
	"fmt"
	"os"

	"github.com/thiagokokada/vcsdiff/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "vcsdiff: %v\n", err)
		os.Exit(1)
	}
}
