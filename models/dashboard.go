package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// GroupCount is one bucket of an aggregation result.
type GroupCount struct {
	ID    string `json:"id" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// DashboardSummary carries the status/type/sex/ethnicity breakdowns served by
// the dashboard endpoint and snapshotted nightly by the scheduler.
type DashboardSummary struct {
	TotalCasos int64            `json:"totalCasos" bson:"totalCasos"`
	PorStatus  map[string]int64 `json:"porStatus" bson:"porStatus"`
	PorTipo    map[string]int64 `json:"porTipo" bson:"porTipo"`
	PorSexo    map[string]int64 `json:"porSexo" bson:"porSexo"`
	PorEtnia   map[string]int64 `json:"porEtnia" bson:"porEtnia"`
}

// DashboardSnapshot is a persisted nightly summary.
type DashboardSnapshot struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Summary   DashboardSummary   `json:"summary" bson:"summary"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}

// HealthCheckResponse is returned by the health endpoint.
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
