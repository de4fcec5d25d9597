package main

import "github.com/vsinha/methodtree/pkg/interfaces/cli/commands"

func main() {
	commands.Execute()
}
