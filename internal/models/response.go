package models

// Insight is a single prioritized insight item. Priority 1 is most urgent,
// 5 least.
type Insight struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"` // success, warning, info, danger
	Title           string   `json:"title"`
	Message         string   `json:"message"`
	Priority        int      `json:"priority"`
	Timestamp       string   `json:"timestamp"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// InsightsResponse wraps the insights list.
type InsightsResponse struct {
	Insights []Insight `json:"insights"`
}

// RiskFactor is a single contributor to the overall risk score.
type RiskFactor struct {
	Name        string `json:"name"`
	Impact      string `json:"impact"` // low, moderate, high
	Description string `json:"description"`
}

// RiskAssessment is the full risk artifact.
type RiskAssessment struct {
	OverallRisk     string       `json:"overallRisk"` // low, moderate, high, critical
	RiskScore       int          `json:"riskScore"`   // 0-100
	Factors         []RiskFactor `json:"factors"`
	Recommendations []string     `json:"recommendations"`
}

// TrendPrediction is the regression-based projection for one metric.
type TrendPrediction struct {
	Metric         string  `json:"metric"`
	CurrentValue   float64 `json:"currentValue"`
	PredictedValue float64 `json:"predictedValue"`
	Confidence     int     `json:"confidence"` // 0-100
	Timeframe      string  `json:"timeframe"`
	Trend          string  `json:"trend"` // improving, stable, worsening
}

// TrendPredictionsResponse wraps the predictions list.
type TrendPredictionsResponse struct {
	Predictions []TrendPrediction `json:"predictions"`
}

// HealthCategory is one weighted sub-score of the health score.
type HealthCategory struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Status string `json:"status"` // excellent, good, fair, poor
}

// HealthScore is the weighted composite score artifact.
type HealthScore struct {
	Overall          int              `json:"overall"`
	Categories       []HealthCategory `json:"categories"`
	ImprovementAreas []string         `json:"improvementAreas"`
}

// Pattern is a single detected blood pressure pattern.
type Pattern struct {
	Type        string `json:"type"`
	Frequency   string `json:"frequency"`
	Severity    string `json:"severity"` // low, moderate, high
	Description string `json:"description"`
}

// PatternAnalysis wraps the detected patterns.
type PatternAnalysis struct {
	Patterns []Pattern `json:"patterns"`
}

// Correlation is a single factor-vs-BP correlation result.
type Correlation struct {
	Factor1     string  `json:"factor1"`
	Factor2     string  `json:"factor2"`
	Correlation float64 `json:"correlation"`
	Strength    string  `json:"strength"`  // weak, moderate, strong
	Direction   string  `json:"direction"` // positive, negative
}

// CorrelationAnalysis wraps the correlations list.
type CorrelationAnalysis struct {
	Correlations []Correlation `json:"correlations"`
}

// HistoricalDataPoint is one daily-averaged historical value.
type HistoricalDataPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ForecastDataPoint is one projected value with confidence bounds.
type ForecastDataPoint struct {
	Date       string  `json:"date"`
	Predicted  float64 `json:"predicted"`
	UpperBound float64 `json:"upperBound"`
	LowerBound float64 `json:"lowerBound"`
}

// TimeSeriesForecast is the forecast artifact.
type TimeSeriesForecast struct {
	Metric     string                `json:"metric"`
	Historical []HistoricalDataPoint `json:"historical"`
	Forecast   []ForecastDataPoint   `json:"forecast"`
}

// CacheStatsResponse reports cache size, capacity and TTL in seconds.
type CacheStatsResponse struct {
	Size     int `json:"size"`
	Capacity int `json:"capacity"`
	TTL      int `json:"ttl"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ErrorResponse represents the error response envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
