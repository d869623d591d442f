package main

import "github.com/javi11/segio/cmd/segio/cmd"

func main() {
	cmd.Execute()
}
