package main

import "github.com/marshallshelly/bazaar/cmd/bazaar/commands"

func main() {
	commands.Execute()
}
