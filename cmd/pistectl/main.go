// Command pistectl imports federation data and runs the scoring pipeline
// from the command line.
package main

import "github.com/okian/piste/internal/cli"

func main() {
	cli.Execute()
}
