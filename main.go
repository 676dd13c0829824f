/*
Copyright 2023 Markus Papenbrock
*/
package main

import "github.com/mpapenbr/race-engineer-go/cmd"

func main() {
	cmd.Execute()
}
