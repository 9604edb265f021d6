// cmd/linsolve/main.go: command-line front end for the linsolve package.
//
// Usage:
//
//	linsolve solve "2x + 3y = 8" "x - y = 1"
//	linsolve solve --exact --format json "x + 2y = 1" "3x - y = 0"
//	linsolve parse -- "- 2 x + 3 y = 4"   # "--" when an equation starts with "-"
//	linsolve batch systems.yaml
package main

import "github.com/njchilds90/linsolve/internal/cli"

func main() {
	cli.Execute()
}
