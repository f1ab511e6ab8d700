package main

import "github.com/ergowatches/served/cmd"

func main() {
	cmd.Execute()
}
