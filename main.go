package main

import "github.com/iksnae/tgsum/cmd"

func main() {
	cmd.Execute()
}
