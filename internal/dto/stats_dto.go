package dto

// BucketCount is one group-by bucket in the stats breakdown.
type BucketCount struct {
	Key   string `json:"_id" gorm:"column:key"`
	Count int64  `json:"count"`
}

type ReportStats struct {
	StatusBreakdown   []BucketCount `json:"statusBreakdown"`
	CategoryBreakdown []BucketCount `json:"categoryBreakdown"`
	SourceBreakdown   []BucketCount `json:"sourceBreakdown"`
	TotalReports      int64         `json:"totalReports"`
	RecentReports     int64         `json:"recentReports"`
	ReportsWithImages int64         `json:"reportsWithImages"`
}

type StatsResponse struct {
	Success            bool              `json:"success"`
	Stats              ReportStats       `json:"stats"`
	ImageServiceHealth map[string]string `json:"imageServiceHealth"`
}
