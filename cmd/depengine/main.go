// Command depengine analyzes the dependency structure of a compiled Java
// classpath: cycles, edge density, and classes or archives unreachable
// from any entry point.
package main

import "github.com/tautenhahn/depengine/cmd/depengine/cmd"

func main() {
	cmd.Execute()
}
