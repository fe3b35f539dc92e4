// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/nupush/nupush/cmd/nupush"

func main() {
	cmd.Execute()
}
