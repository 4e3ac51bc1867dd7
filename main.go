package main

import "github.com/heimdall-ai/heimdall/cmd"

func main() {
	cmd.Execute()
}
