package main

import "query-sync/cmd"

func main() {
	cmd.Execute()
}
