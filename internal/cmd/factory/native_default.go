//go:build !(libgit2 && cgo)

package factory

import (
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/native/gitengine"
)

const backendName = "gitengine"

func newLibrary() native.Library { return gitengine.New() }
