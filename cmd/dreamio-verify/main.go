package main

import "github.com/dreamio-app/dreamio-release/cmd/dreamio-verify/cmd"

func main() {
	cmd.Execute()
}
