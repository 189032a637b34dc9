package main

import "github.com/kmorel/notecast/cmd"

func main() {
	cmd.Execute()
}
