package artifact

// Kind identifies which artifact in a trigger's fixed file set a given
// payload belongs to. This file is the single source of truth for the
// suffixes and stack windows that make up one trigger event, the way the
// sensor schema file is for CSV columns.
type Kind int

const (
	// KindMap is the trigger diagnostic composite (_MAP.rawrgb): red shows
	// brightening versus the threshold, green a copy of the triggering
	// second, blue which pixels were part of the triggering blob.
	KindMap Kind = iota
	// KindTriggerSecondPlain is the triggering second, unsubtracted
	// (2_BS0.rawimg).
	KindTriggerSecondPlain
	// KindTriggerSecondSubtracted is the triggering second, background
	// subtracted and gain-stretched (2_BS1.rawimg).
	KindTriggerSecondSubtracted
	// KindTriggerSecondMax is the triggering second's per-pixel maximum
	// (2_MAX.rawimg).
	KindTriggerSecondMax
	// KindPreSecondPlain is the second immediately before the trigger,
	// unsubtracted (1_BS0.rawimg).
	KindPreSecondPlain
	// KindPreSecondSubtracted is the pre-trigger second, background
	// subtracted (1_BS1.rawimg).
	KindPreSecondSubtracted
	// KindPreSecondMax is the pre-trigger second's maximum map
	// (1_MAX.rawimg).
	KindPreSecondMax
	// KindLongPlain is the whole post-trigger recording window, unsubtracted
	// (3_BS0.rawimg).
	KindLongPlain
	// KindLongSubtracted is the whole recording window, background
	// subtracted (3_BS1.rawimg).
	KindLongSubtracted
	// KindLongMax is the recording window's maximum map (3_MAX.rawimg).
	KindLongMax
	// KindClip is the assembled .rawvid recording itself.
	KindClip
)

// Suffix is the filename suffix appended to a trigger stub for each Kind,
// e.g. stub+Suffix(KindMap) == ".../20260731140509_trigger_MAP.rawrgb".
func (k Kind) Suffix() string {
	switch k {
	case KindMap:
		return "_MAP.rawrgb"
	case KindTriggerSecondPlain:
		return "2_BS0.rawimg"
	case KindTriggerSecondSubtracted:
		return "2_BS1.rawimg"
	case KindTriggerSecondMax:
		return "2_MAX.rawimg"
	case KindPreSecondPlain:
		return "1_BS0.rawimg"
	case KindPreSecondSubtracted:
		return "1_BS1.rawimg"
	case KindPreSecondMax:
		return "1_MAX.rawimg"
	case KindLongPlain:
		return "3_BS0.rawimg"
	case KindLongSubtracted:
		return "3_BS1.rawimg"
	case KindLongMax:
		return "3_MAX.rawimg"
	case KindClip:
		return ".rawvid"
	default:
		return ""
	}
}

// TimelapseKind identifies the two files written for each timelapse frame.
type TimelapseKind int

const (
	TimelapsePlain TimelapseKind = iota
	TimelapseSubtracted
)

// Suffix is the filename suffix for a timelapse artifact.
func (k TimelapseKind) Suffix() string {
	if k == TimelapseSubtracted {
		return "BS1.rawimg"
	}
	return "BS0.rawimg"
}
