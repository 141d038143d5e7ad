package main

import (
	"os"

	"github.com/lcgate/rulekeeper/cmd/rulekeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
