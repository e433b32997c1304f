package convert

import "go.uber.org/zap"

// Summary aggregates the non-fatal outcomes of a conversion run. Per-scope
// summaries are merged into one before reporting.
type Summary struct {
	Scopes       int
	FailedScopes []string

	Records   int
	Converted int

	SkippedUnknownType int
	SkippedNoGeometry  int
	SkippedNoNames     int
	SkippedUntagged    int

	Duplicates     int
	RankAdjusted   int
	Relocated      int
	RelocateFailed int
}

// Merge folds another summary into s.
func (s *Summary) Merge(o Summary) {
	s.Scopes += o.Scopes
	s.FailedScopes = append(s.FailedScopes, o.FailedScopes...)
	s.Records += o.Records
	s.Converted += o.Converted
	s.SkippedUnknownType += o.SkippedUnknownType
	s.SkippedNoGeometry += o.SkippedNoGeometry
	s.SkippedNoNames += o.SkippedNoNames
	s.SkippedUntagged += o.SkippedUntagged
	s.Duplicates += o.Duplicates
	s.RankAdjusted += o.RankAdjusted
	s.Relocated += o.Relocated
	s.RelocateFailed += o.RelocateFailed
}

// Log reports the summary through the global logger.
func (s Summary) Log() {
	zap.L().Info("conversion finished",
		zap.String("component", "convert"),
		zap.Int("scopes", s.Scopes),
		zap.Strings("failed_scopes", s.FailedScopes),
		zap.Int("records", s.Records),
		zap.Int("converted", s.Converted),
		zap.Int("skipped_unknown_type", s.SkippedUnknownType),
		zap.Int("skipped_no_geometry", s.SkippedNoGeometry),
		zap.Int("skipped_no_names", s.SkippedNoNames),
		zap.Int("skipped_untagged", s.SkippedUntagged),
		zap.Int("duplicates", s.Duplicates),
		zap.Int("rank_adjusted", s.RankAdjusted),
		zap.Int("relocated", s.Relocated),
		zap.Int("relocate_failed", s.RelocateFailed),
	)
}
