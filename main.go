package main

import "github.com/heimdallmaps/heimdall/cmd"

func main() {
	cmd.Execute()
}
