// SPDX-License-Identifier: MPL-2.0

// Command nugetstep runs NuGet as a build step.
package main

import cmd "github.com/nugetstep/nugetstep/cmd/nugetstep"

func main() {
	cmd.Execute()
}
