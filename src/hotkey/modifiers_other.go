//go:build !windows && !linux && !darwin

package hotkey

import "ai-anywhere/src/keyspec"

func platformBackend(spec keyspec.KeySpec) (Backend, error) { return nil, ErrUnsupported }
