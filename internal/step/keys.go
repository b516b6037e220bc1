// Package step implements the concrete pipeline steps composed into the
// masterRefresh and batchInference jobs.
package step

// Execution-context keys the steps use to hand work to each other.
const (
	// KeyObservations holds []domain.Observation produced by the fetch step.
	KeyObservations = "observations"
	// KeyFeatureMatrix holds the domain.FeatureMatrix produced by assembly.
	KeyFeatureMatrix = "featureMatrix"
	// KeyMasterDataset holds the merged domain.FeatureMatrix.
	KeyMasterDataset = "masterDataset"
	// KeyMergeReport holds the dataset.MergeReport of the last merge.
	KeyMergeReport = "mergeReport"
	// KeyPredictions holds the number of predictions written.
	KeyPredictions = "predictionCount"
)
