//go:build !linux

package browser

func usePrimarySelection() {}
