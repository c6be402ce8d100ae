// main is the entry point for the gitlake CLI.
package main

import (
	"github.com/huangsam/gitlake/cmd"
	"github.com/huangsam/gitlake/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("gitlake failed", err)
	}
}
