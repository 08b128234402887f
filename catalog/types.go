// Package catalog defines the read-mostly domain entities (terrain,
// tractors, implements) that the physics and matching components operate
// over, along with the write-path records the persistence gateway produces.
package catalog

import "time"

// TerrainStatus is the lifecycle state of a Terrain row.
type TerrainStatus string

const (
	TerrainActive   TerrainStatus = "active"
	TerrainInactive TerrainStatus = "inactive"
)

// Terrain is a parcel of land owned by a user.
type Terrain struct {
	TerrainID    int64         `json:"terrain_id"`
	OwnerUserID  int64         `json:"owner_user_id"`
	Name         string        `json:"name"`
	AltitudeM    float64       `json:"altitude_m"`
	SlopePct     float64       `json:"slope_pct"`
	SoilType     string        `json:"soil_type"`
	TemperatureC *float64      `json:"temperature_c,omitempty"`
	Status       TerrainStatus `json:"status"`
}

// TractionType is the normalized drivetrain enum.
type TractionType string

const (
	Traction4x4   TractionType = "4x4"
	Traction4x2   TractionType = "4x2"
	TractionTrack TractionType = "track"
)

// TractorStatus is the normalized availability enum.
type TractorStatus string

const (
	TractorAvailable   TractorStatus = "available"
	TractorActive      TractorStatus = "active"
	TractorMaintenance TractorStatus = "maintenance"
	TractorInactive    TractorStatus = "inactive"
	TractorInUse       TractorStatus = "in_use"
)

// Tractor is a catalog machine eligible for matching.
type Tractor struct {
	TractorID          int64
	Name               string
	Brand              string
	Model              string
	EnginePowerHP      float64
	WeightKg           float64
	TractionForceKN    float64
	TractionType       TractionType
	TireType           string
	FuelConsumptionLPH *float64
	Status             TractorStatus
}

// ImplementType enumerates the supported agricultural implements.
type ImplementType string

const (
	ImplementPlow       ImplementType = "plow"
	ImplementHarrow     ImplementType = "harrow"
	ImplementSeeder     ImplementType = "seeder"
	ImplementSprayer    ImplementType = "sprayer"
	ImplementHarvester  ImplementType = "harvester"
	ImplementCultivator ImplementType = "cultivator"
	ImplementMower      ImplementType = "mower"
	ImplementTrailer    ImplementType = "trailer"
	ImplementOther      ImplementType = "other"
)

// Implement is a catalog attachment towed or driven by a tractor.
type Implement struct {
	ImplementID        int64         `json:"implement_id"`
	ImplementName      string        `json:"implement_name"`
	ImplementType      ImplementType `json:"implement_type"`
	PowerRequirementHP float64       `json:"power_requirement_hp"`
	WorkingWidthM      float64       `json:"working_width_m"`
	WorkingDepthCM     *float64      `json:"working_depth_cm,omitempty"`
	Status             string        `json:"status"`
}

// QueryType discriminates the three request shapes the gateway persists.
type QueryType string

const (
	QueryTypePowerLoss      QueryType = "power_loss"
	QueryTypeRecommendation QueryType = "recommendation"
	QueryTypeMinimumPower   QueryType = "minimum_power"
)

// QueryStatus records whether the computation behind a Query succeeded.
type QueryStatus string

const (
	QueryStatusCompleted QueryStatus = "completed"
	QueryStatusFailed    QueryStatus = "failed"
)

// PowerLoss is the 1:1 HP decomposition child of a power-loss Query.
type PowerLoss struct {
	HistoryID           int64
	QueryID             int64
	SlopeHP             float64
	AltitudeHP          float64
	RollingResistanceHP float64
	SlippageHP          float64
	TransmissionHP      float64
	TotalHP             float64
	GrossHP             float64
	NetHP               float64
	EfficiencyPct       float64
}

// WorkType is the coarse agricultural-task label stored with a
// Recommendation for later filtering.
type WorkType string

const (
	WorkTypeTillage    WorkType = "tillage"
	WorkTypePlanting   WorkType = "planting"
	WorkTypeHarvesting WorkType = "harvesting"
	WorkTypeTransport  WorkType = "transport"
	WorkTypeGeneral    WorkType = "general"
)

// Recommendation is a single ranked candidate persisted against a
// recommendation Query (at most 3 rows per query_id).
type Recommendation struct {
	RecommendationID   int64
	QueryID            int64
	UserID             int64
	TerrainID          int64
	TractorID          int64
	ImplementID        int64
	CompatibilityScore float64
	Observations       ObservationSnapshot
	WorkType           WorkType
	CreatedAt          time.Time
}

// ObservationSnapshot is the typed write-path shape of the opaque
// `observations` JSON blob; the read path falls back to a raw-string
// wrapper when decoding an older row fails.
type ObservationSnapshot struct {
	Rank           int            `json:"rank"`
	Score          ScoreBreakdown `json:"score"`
	Compatibility  float64        `json:"compatibility"`
	Classification string         `json:"classification"`
	Explanation    string         `json:"explanation"`
	Snapshot       map[string]any `json:"snapshot"`
}

// ScoreBreakdown is the five-component weighted score total.
type ScoreBreakdown struct {
	Total        float64 `json:"total"`
	Efficiency   float64 `json:"efficiency"`
	Traction     float64 `json:"traction"`
	Soil         float64 `json:"soil"`
	Economic     float64 `json:"economic"`
	Availability float64 `json:"availability"`
}

// QueryHistory is the audit row written alongside every Query.
type QueryHistory struct {
	HistoryID   int64
	UserID      int64
	QueryID     int64
	ActionType  string
	Description string
	ResultJSON  string
	CreatedAt   time.Time
}
