package main

import "github.com/notargets/dgops/cmd"

func main() {
	cmd.Execute()
}
