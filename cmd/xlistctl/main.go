package main

import "github.com/npillmayer/xlist/cmd/xlistctl/cmd"

func main() {
	cmd.Execute()
}
