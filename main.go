package main

import "github.com/lipu-linku/sona/cmd"

func main() {
	cmd.Execute()
}
