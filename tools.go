//go:build tools

package tools

// Pins the mock generator version. Regenerate the orientation mocks with:
//
//	go generate ./pkg/orientation/...
import (
	_ "github.com/vektra/mockery/v2"
)
