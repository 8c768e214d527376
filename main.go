package main

import "github.com/timvw/draft-patrol/cmd"

func main() {
	cmd.Execute()
}
