package main

import "github.com/xvierd/fuzzle/cmd"

func main() {
	cmd.Execute()
}
