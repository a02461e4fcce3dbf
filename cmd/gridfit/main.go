package main

import (
	"github.com/NVIDIA/bpass-gridfit/pkg/cli"
)

func main() {
	cli.Execute()
}
