package clipboard

import (
	"errors"
	"fmt"
	"sync"

	xclip "golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// Init prepares the system clipboard. Only the first call does any work.
func Init() error {
	initOnce.Do(func() {
		initErr = xclip.Init()
	})
	return initErr
}

type systemBoard struct{}

// System returns the OS clipboard. Init must have succeeded.
func System() Board { return newSystemBoard() }

func (systemBoard) Read(f Format) []byte {
	return xclip.Read(xformat(f))
}

func (systemBoard) Write(f Format, data []byte) error {
	if err := Init(); err != nil {
		return fmt.Errorf("clipboard: init: %w", err)
	}
	if xclip.Write(xformat(f), data) == nil {
		return errors.New("clipboard: write rejected by the system clipboard")
	}
	return nil
}

func xformat(f Format) xclip.Format {
	if f == FmtImage {
		return xclip.FmtImage
	}
	return xclip.FmtText
}
