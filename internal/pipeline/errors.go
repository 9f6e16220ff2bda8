package pipeline

import "fmt"

// Stage names the per-tag step that failed.
type Stage string

const (
	StageCrop   Stage = "crop"
	StageSave   Stage = "save"
	StageEncode Stage = "encode"
	StageOCR    Stage = "ocr"
)

// TagError records the failure of one tag.
type TagError struct {
	Index int
	Stage Stage
	Err   error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag %d: %s failed: %v", e.Index, e.Stage, e.Err)
}

func (e *TagError) Unwrap() error {
	return e.Err
}
