package main

import (
	"github.com/xkilldash9x/mediagrab-cli/cmd"
)

func main() {
	cmd.Execute()
}
