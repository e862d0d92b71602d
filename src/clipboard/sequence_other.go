//go:build !windows

package clipboard

func newSystemBoard() Board { return systemBoard{} }
