//go:build libgit2 && cgo

package factory

import (
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/native/libgit2"
)

const backendName = "libgit2"

func newLibrary() native.Library { return libgit2.New() }
