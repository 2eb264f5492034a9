package entities

// NarrationAttr is the attribute that marks an element as narration-bearing.
const NarrationAttr = "data-tts"

// Fragment is one narration-bearing unit within a slide, in document order.
// FragmentIndex is zero-based and scoped to the slide; it is the ordering
// consumers use to schedule playback and auto-advance.
type Fragment struct {
	SlideIndex    int    `json:"slideIndex"`
	FragmentIndex int    `json:"fragmentIndex"`
	Text          string `json:"text"`
}

// ProcessedFragment is a fragment with generated audio attached.
type ProcessedFragment struct {
	Fragment

	// AudioRef references the persisted audio blob
	AudioRef string `json:"audioRef"`

	// DurationMS is the probed audio duration in milliseconds
	DurationMS int `json:"durationMs"`
}

// AudioCacheEntry is the persisted per-fragment narration record.
type AudioCacheEntry struct {
	TTSText      string `json:"ttsText"`
	AudioFileRef string `json:"audioFileRef"`
	DurationMS   int    `json:"durationMs"`
}

// AudioCache maps slide index to that slide's fragment entries, ordered by
// fragment index. Regeneration replaces a project's whole cache atomically.
type AudioCache map[int][]AudioCacheEntry
