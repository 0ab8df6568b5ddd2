package main

import (
	"log/slog"

	"github.com/flowexport/ipfixd/cmd/ipfixd/cmd"
	"github.com/flowexport/ipfixd/pkg/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger, _ := logging.New(slog.LevelInfo, logging.EncodingLogfmt)
		logger.With("error", err).Fatal("ipfixd terminated with an error")
	}
}
