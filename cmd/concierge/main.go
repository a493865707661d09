// Command concierge is the front desk CLI for a residential building.
package main

import "github.com/mesh-intelligence/concierge/internal/cli"

func main() {
	cli.Execute()
}
