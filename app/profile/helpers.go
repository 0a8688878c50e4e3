package profile

import (
	"time"
)

// GetTimeout returns the feed request timeout as time.Duration
func (s *FeedSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

// GetTimeout returns the page request timeout as time.Duration
func (s *ContentSettings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

// GetTemperature returns the sampling temperature. An explicit 0 is kept.
func (s *ClassifierSettings) GetTemperature() float64 {
	if s.Temperature == nil {
		return DefaultTemperature
	}
	return *s.Temperature
}

func (s *PacingSettings) GetPostDelay() time.Duration {
	if s.PostDelay == nil {
		return DefaultPostDelay * time.Millisecond
	}
	return time.Duration(*s.PostDelay) * time.Millisecond
}

func (s *PacingSettings) GetBatchDelay() time.Duration {
	if s.BatchDelay == nil {
		return DefaultBatchDelay * time.Millisecond
	}
	return time.Duration(*s.BatchDelay) * time.Millisecond
}

// SemanticEnabled defaults to true when the setting is omitted.
func (s *DedupSettings) SemanticEnabled() bool {
	return s.Semantic == nil || *s.Semantic
}
