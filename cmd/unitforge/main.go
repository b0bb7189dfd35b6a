// Command unitforge is a calculator that keeps track of physical units.
package main

import "github.com/mesh-intelligence/unitforge/internal/cli"

func main() {
	cli.Execute()
}
