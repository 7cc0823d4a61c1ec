package logging

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logger. Unknown levels fall back to info and
// any format other than "json" logs text.
func Init(level, format string) {
	log.SetOutput(os.Stdout)
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Game returns an entry tagged with the game id.
func Game(gameID string) *log.Entry {
	return log.WithField("game_id", gameID)
}
