package main

import "github.com/eslsoft/traitscore/cmd"

func main() {
	cmd.Execute()
}
