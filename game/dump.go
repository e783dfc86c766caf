package game

import "fmt"

// Dump prints one line per state: its owner, default owner, successor
// count, and whether it's bad/significant. Gated behind the CLI's
// -debug flag.
func Dump(g *Game) {
	for s := 0; s < g.NumStates(); s++ {
		marker := " "
		if s == g.InitialState {
			marker = "*"
		}
		fmt.Printf("%s state %-4d owner=%-5s default=%-5s succ=%-2d bad=%-5v significant=%v\n",
			marker, s, g.Owner[s], g.defaultOwner[s], g.successorCount[s], g.isBad[s], g.IsSignificant(s))
	}
}
