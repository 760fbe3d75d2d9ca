package models

import "time"

// RunReport records one execution of the cleaning pipeline from ingest to
// export. Reports are returned by the run endpoint and persisted to the
// runs table when the database is enabled.
type RunReport struct {
	ID         string    `json:"id"`
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	DuplicatesDropped      int `json:"duplicates_dropped"`
	MissingProvinceDropped int `json:"missing_province_dropped"`
	IncompleteRowsDropped  int `json:"incomplete_rows_dropped"`
	PriceOutliers          int `json:"price_outliers"`
	LivingAreaOutliers     int `json:"living_area_outliers"`
}

// Duration returns the wall-clock time the run took.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
