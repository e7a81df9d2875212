package main

import (
	"os"

	"github.com/schmitthub/gitmerge/internal/gitmerge"
)

func main() {
	os.Exit(gitmerge.Main())
}
