package specbleach

// Stats is a read-only diagnostics side-channel updated alongside, not on,
// the hot path: one assignment per field per frame, no allocation.
type Stats struct {
	FramesProcessed    uint64
	FramesLearned      uint64
	LastEstimatedSNRdB float64
	CurrentReductionDB float64
}

func (s *Stats) recordFrame(snrDB, reductionDB float64) {
	s.FramesProcessed++
	s.LastEstimatedSNRdB = snrDB
	s.CurrentReductionDB = reductionDB
}

func (s *Stats) recordLearn() {
	s.FramesLearned++
}
