//go:build !js && !wasm

package capture

import (
	"fmt"

	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/types"
)

// Microphone is the live capture source. None of this module's dependency
// corpus carries an OS-level audio *capture* library (only WAV decode
// libraries are available for the reference loader), so Start reports a
// CaptureTerminal error rather than silently producing no audio. Wiring a
// real backend means implementing Source against whatever capture library
// is added to go.mod; Poll/Stop's shape does not need to change.
type Microphone struct{}

// NewMicrophone constructs the live capture source stub.
func NewMicrophone() *Microphone {
	return &Microphone{}
}

func (m *Microphone) Start(targetSampleRate, channels int) (types.DeviceInfo, error) {
	return types.DeviceInfo{}, errs.New(errs.CaptureTerminal, "capture.Microphone.Start",
		fmt.Errorf("no live audio capture backend is wired in this build"))
}

func (m *Microphone) Poll() ([]Chunk, error) { return nil, nil }

func (m *Microphone) Stop() error { return nil }
