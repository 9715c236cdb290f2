package version

import (
	"fmt"
	"runtime"
)

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/carrinho/internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build описание сборки, отдаётся на /version.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

func Current() Build {
	return Build{Version: version, Commit: commit, Date: date, GoVersion: runtime.Version()}
}

func GetVersion() string { return version }

func String() string {
	return fmt.Sprintf("carrinho version=%s commit=%s date=%s", version, commit, date)
}
