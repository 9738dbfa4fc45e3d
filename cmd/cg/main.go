package main

import "github.com/commonground/cg/internal/cmd"

func main() {
	cmd.Execute()
}
