package main

import "github.com/mcoot/symptomcheck/internal/cli"

func main() {
	cli.Execute()
}
