package main

import "github.com/seasworth/seasworthai/cmd"

func main() {
	cmd.Execute()
}
