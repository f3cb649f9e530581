package main

import "debt-coach/cmd"

func main() {
	cmd.Execute()
}
