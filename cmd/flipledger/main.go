package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	root, c := newRootCmd()
	if err := execute(root, c); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
