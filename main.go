package main

import "github.com/naka-gawa/git-tracker/cmd"

func main() {
	cmd.Execute()
}
