package cmd

import (
	"github.com/grindrt/grind/log"
	"github.com/urfave/cli"
)

var logger = log.New("grind")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
