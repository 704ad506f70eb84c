package main

import (
	"context"
	"os"

	"github.com/fsdevblog/shortlinks/internal/bmeta"
	"github.com/fsdevblog/shortlinks/internal/cli"
)

// Заполняются при сборке: go build -ldflags "-X main.buildVersion=v1.0.0 ...".
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	err := cli.Execute(context.Background(), bmeta.Info{
		Version: buildVersion,
		Date:    buildDate,
		Commit:  buildCommit,
	})
	if err != nil {
		os.Exit(1)
	}
}
