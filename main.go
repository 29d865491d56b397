// ABOUTME: Entry point for the wavescrub terminal player
// ABOUTME: Hands control to the cobra command tree
package main

import "github.com/Resonate-Protocol/wavescrub/internal/cli"

func main() {
	cli.Execute()
}
