package main

import "github.com/nextlevelbuilder/slackadder/cmd"

func main() {
	cmd.Execute()
}
