package main

import (
	cmd "github.com/streetsight/streetsight/cmd/streetsight"
)

func main() {
	cmd.Execute()
}
