// Package segment contains the entities exchanged with the segmentation
// backend. Values are request-scoped and never persisted.
package segment

// PredictionRequest is the body of POST /predict.
type PredictionRequest struct {
	AnnualIncome  float64 `json:"annual_income"`
	SpendingScore int     `json:"spending_score"`
}

// PredictionResult is the success body of POST /predict.
type PredictionResult struct {
	ClusterID         int     `json:"cluster_id"`
	ClusterName       string  `json:"cluster_name"`
	AnnualIncome      float64 `json:"annual_income"`
	SpendingScore     int     `json:"spending_score"`
	Description       string  `json:"description"`
	MarketingStrategy string  `json:"marketing_strategy"`
}

// ClusterStat is one entry of GET /clusters, in server order.
type ClusterStat struct {
	ClusterID        *int     `json:"cluster_id,omitempty"`
	ClusterName      string   `json:"cluster_name"`
	Count            int      `json:"count"`
	AvgIncome        float64  `json:"avg_income"`
	AvgSpendingScore float64  `json:"avg_spending_score"`
	AvgAge           *float64 `json:"avg_age,omitempty"`
}

// HasAge reports whether the age line should be shown. A missing, null or
// zero average age hides it.
func (s ClusterStat) HasAge() bool {
	return s.AvgAge != nil && *s.AvgAge != 0
}

// ModelInfo is the body of GET /model/info.
type ModelInfo struct {
	ModelLoaded  bool     `json:"model_loaded"`
	ModelType    string   `json:"model_type"`
	NClusters    int      `json:"n_clusters"`
	FeaturesUsed []string `json:"features_used,omitempty"`
	ScalerLoaded bool     `json:"scaler_loaded,omitempty"`
}

// ClusterProfile describes one segment in GET /clusters/info.
type ClusterProfile struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	MarketingStrategy string `json:"marketing_strategy"`
}

// ClusterInfo maps cluster ids to their profiles. JSON object keys are the
// decimal ids.
type ClusterInfo map[int]ClusterProfile

// Health is the body of GET /health.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Message     string `json:"message"`
}
