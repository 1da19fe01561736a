package main

import "github.com/zintix-labs/magiclab/sdk/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeVerifier, cfg.pprofmode)
}
