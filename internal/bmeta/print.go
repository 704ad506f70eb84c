// Package bmeta сведения о сборке, которые подставляются через -ldflags.
package bmeta

import (
	"fmt"
	"io"
)

const defaultBuildMeta = "N/A" // Значение по умолчанию

// Info версия, дата и комит сборки.
type Info struct {
	Version string
	Date    string
	Commit  string
}

// WithDefaults заменяет пустые поля на N/A.
func (i Info) WithDefaults() Info {
	if i.Version == "" {
		i.Version = defaultBuildMeta
	}
	if i.Date == "" {
		i.Date = defaultBuildMeta
	}
	if i.Commit == "" {
		i.Commit = defaultBuildMeta
	}
	return i
}

// Print Распечатывает версию, дату и комит сборки.
func Print(w io.Writer, info Info) error {
	meta := info.WithDefaults()
	if _, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n",
		meta.Version, meta.Date, meta.Commit); err != nil {
		return fmt.Errorf("print build meta: %w", err)
	}
	return nil
}
