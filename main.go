// Package main is the entry point for the vplayer application.
package main

import (
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vplayer/vplayer/cmd"
	"github.com/vplayer/vplayer/config"
	"github.com/vplayer/vplayer/history"
	"github.com/vplayer/vplayer/key"
	"github.com/vplayer/vplayer/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go func() {
		maxAge := time.Duration(viper.GetInt(key.HistoryMaxAgeDays)) * 24 * time.Hour
		if dropped, err := history.CollectGarbage(maxAge); err != nil {
			log.Warnf("history: collect garbage: %v", err)
		} else if dropped > 0 {
			log.Infof("history: forgot %d stale positions", dropped)
		}
	}()

	cmd.Execute()
}
