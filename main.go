package main

import "deep-agent/cmd"

func main() {
	cmd.Execute()
}
