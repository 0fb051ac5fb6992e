package main

import "github.com/Norgate-AV/swrun/cmd"

func main() {
	cmd.Execute()
}
