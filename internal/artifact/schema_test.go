package artifact

import "testing"

func TestKindSuffixesAreUnique(t *testing.T) {
	kinds := []Kind{
		KindMap, KindTriggerSecondPlain, KindTriggerSecondSubtracted, KindTriggerSecondMax,
		KindPreSecondPlain, KindPreSecondSubtracted, KindPreSecondMax,
		KindLongPlain, KindLongSubtracted, KindLongMax, KindClip,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		suf := k.Suffix()
		if suf == "" {
			t.Fatalf("kind %d has an empty suffix", k)
		}
		if seen[suf] {
			t.Fatalf("duplicate suffix %q", suf)
		}
		seen[suf] = true
	}
}

func TestTimelapseKindSuffixes(t *testing.T) {
	if TimelapsePlain.Suffix() == TimelapseSubtracted.Suffix() {
		t.Fatal("timelapse plain and subtracted suffixes should differ")
	}
}
