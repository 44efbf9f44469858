package git

// MergeArgs exports mergeArgs for testing.
var MergeArgs = mergeArgs //nolint:gochecknoglobals // test export

// ClassifyMerge exports classifyMerge for testing.
var ClassifyMerge = classifyMerge //nolint:gochecknoglobals // test export
