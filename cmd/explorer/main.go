package main

import (
	"github.com/freechain/poa-explorer/cmd"
)

func main() {
	cmd.Execute()
}
