package session

import (
	"errors"
	"fmt"
)

var errNoCaptureSource = errors.New("a capture source must be configured with WithCaptureSource")

func errLatencyOverrun(actualMs, budgetMs float64) error {
	return fmt.Errorf("tick took %.1fms, exceeding the %.1fms advisory budget", actualMs, budgetMs)
}
