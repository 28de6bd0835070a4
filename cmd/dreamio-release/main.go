package main

import "github.com/dreamio-app/dreamio-release/cmd/dreamio-release/cmd"

func main() {
	cmd.Execute()
}
