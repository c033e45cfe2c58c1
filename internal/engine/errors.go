package engine

import "fmt"

const (
	StageValidate = "validate"
	StageDepth    = "depth"
	StageFit      = "fit"
	StageField    = "field"
	StageSample   = "sample"
	StageFill     = "fill"
	StageSink     = "sink"
	StageCancel   = "cancel"
)

// RenderError говорит, на каком этапе и каком кадре произошла ошибка.
// Frame = -1 для ошибок до первого кадра.
type RenderError struct {
	Stage string
	Frame int
	Err   error
}

func (e *RenderError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("render %s, frame %d: %v", e.Stage, e.Frame, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
