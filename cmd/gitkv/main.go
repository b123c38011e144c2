package main

import "github.com/aweris/gitkv/cmd/gitkv/cmd"

func main() {
	cmd.Execute()
}
