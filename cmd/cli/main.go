package main

import "questlog/cmd/cli/command"

func main() {
	command.Execute()
}
