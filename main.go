package main

import (
	"github.com/foomo/entitystore/cmd"
)

func main() {
	cmd.Execute()
}
