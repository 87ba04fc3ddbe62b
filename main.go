// Command boardkit manages .boardkit board documents and their
// inter-widget data-sharing state.
package main

import "github.com/boardkit/boardkit/cmd"

func main() {
	cmd.Execute()
}
