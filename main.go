package main

import "github.com/user/shelfmark/cmd"

func main() {
	cmd.Execute()
}
