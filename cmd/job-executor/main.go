package main

import "github.com/LENAX/job-executor/pkg/cli/cmd"

func main() {
	cmd.Execute()
}
