// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/tagscout/cmd/tagscout"

// execute is overridable in tests.
var execute = tagscout.Execute

func main() {
	execute()
}
