package frame

import "fmt"

// Stage is the argument of IBaseClientDLL::FrameStageNotify.
type Stage int32

const (
	StageUndefined Stage = iota - 1
	StageStart
	StageNetUpdateStart
	StageNetUpdatePostDataStart
	StageNetUpdatePostDataEnd
	StageNetUpdateEnd
	StageRenderStart
	StageRenderEnd
	StageFullFrameUpdateOnRemove
)

var stageNames = map[Stage]string{
	StageUndefined:               "undefined",
	StageStart:                   "start",
	StageNetUpdateStart:          "net_update_start",
	StageNetUpdatePostDataStart:  "net_update_postdata_start",
	StageNetUpdatePostDataEnd:    "net_update_postdata_end",
	StageNetUpdateEnd:            "net_update_end",
	StageRenderStart:             "render_start",
	StageRenderEnd:               "render_end",
	StageFullFrameUpdateOnRemove: "full_frame_update_on_remove",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int32(s))
}

// Stages lists the defined stages in frame order.
func Stages() []Stage {
	return []Stage{
		StageStart,
		StageNetUpdateStart,
		StageNetUpdatePostDataStart,
		StageNetUpdatePostDataEnd,
		StageNetUpdateEnd,
		StageRenderStart,
		StageRenderEnd,
		StageFullFrameUpdateOnRemove,
	}
}
