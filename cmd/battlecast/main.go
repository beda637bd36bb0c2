package main

import "github.com/battlecast/battlecast/cmd/battlecast/cmd"

func main() {
	cmd.Execute()
}
