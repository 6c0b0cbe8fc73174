package main

import (
	"github.com/sagan/aimeta/cmd"
	_ "github.com/sagan/aimeta/cmd/all"
)

func main() {
	cmd.Execute()
}
