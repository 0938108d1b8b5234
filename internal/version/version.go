package version

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Заполняется через -ldflags при сборке релиза.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

// Version возвращает только версию; используется в health-ответах.
func Version() string { return version }

// String форматирует сведения о сборке одной строкой.
func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}

// Fields отдаёт сведения о сборке как поля structured-лога.
func Fields() log.Fields {
	return log.Fields{
		"version": version,
		"commit":  commit,
		"date":    date,
	}
}
