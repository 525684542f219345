//go:build tools
// +build tools

// Package tools pins tool dependencies (mockgen) so go.mod tracks them.
package tourcast

import (
	_ "go.uber.org/mock/mockgen"
)
