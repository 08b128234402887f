package postgres

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"agripower/catalog"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &Store{db: db}, mock
}

func sampleRecommendationSnapshot() RecommendationSnapshot {
	topID := int64(7)
	return RecommendationSnapshot{
		UserID:      1,
		TerrainID:   2,
		ImplementID: 3,
		WorkType:    catalog.WorkTypeTillage,
		TopTractorID: &topID,
		Persisted: []catalog.Recommendation{
			{TractorID: 7, ImplementID: 3, CompatibilityScore: 92.5, Observations: catalog.ObservationSnapshot{Rank: 1}},
			{TractorID: 8, ImplementID: 3, CompatibilityScore: 80.1, Observations: catalog.ObservationSnapshot{Rank: 2}},
			{TractorID: 9, ImplementID: 3, CompatibilityScore: 75.0, Observations: catalog.ObservationSnapshot{Rank: 3}},
		},
		HistoryDescription: "Recomendación generada",
		HistoryResult:      map[string]any{"topScore": 92.5},
	}
}

// A successful recommendation commit writes exactly one query row,
// min(3,|recommendations|) recommendation rows, and one query_history row,
// all inside a single transaction.
func TestPersistRecommendationCommitsAllRowsInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO query").
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}).AddRow(int64(100)))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO recommendation").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO query_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	queryID, apiErr := store.PersistRecommendation(context.Background(), sampleRecommendationSnapshot())
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if queryID != 100 {
		t.Errorf("queryID = %d, want 100", queryID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// All-or-nothing: a failure inserting the second recommendation row rolls
// back every insert from the transaction, including the already-inserted
// query row and first recommendation row.
func TestPersistRecommendationRollsBackOnMidTransactionFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO query").
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}).AddRow(int64(101)))
	mock.ExpectExec("INSERT INTO recommendation").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO recommendation").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	_, apiErr := store.PersistRecommendation(context.Background(), sampleRecommendationSnapshot())
	if apiErr == nil {
		t.Fatalf("expected an error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPersistRecommendationRollsBackWhenCommitFails(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO query").
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}).AddRow(int64(102)))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO recommendation").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("INSERT INTO query_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, apiErr := store.PersistRecommendation(context.Background(), sampleRecommendationSnapshot())
	if apiErr == nil {
		t.Fatalf("expected an error when commit fails")
	}
}

func TestPersistPowerLossCommitsAllRows(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO query").
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}).AddRow(int64(200)))
	mock.ExpectExec("INSERT INTO power_loss").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO query_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	snap := PowerLossSnapshot{
		UserID:             1,
		TerrainID:          2,
		TractorID:          3,
		Breakdown:          catalog.PowerLoss{TotalHP: 22.3, GrossHP: 100, NetHP: 77.7, EfficiencyPct: 77.7},
		HistoryDescription: "Cálculo de pérdida de potencia",
		HistoryResult:      map[string]any{"total": 22.3},
	}
	queryID, apiErr := store.PersistPowerLoss(context.Background(), snap)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if queryID != 200 {
		t.Errorf("queryID = %d, want 200", queryID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPersistMinimumPowerCommitsQueryAndHistory(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO query").
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}).AddRow(int64(300)))
	mock.ExpectExec("INSERT INTO query_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	snap := MinimumPowerSnapshot{
		UserID:             1,
		TerrainID:          2,
		ImplementID:        3,
		HistoryDescription: "Cálculo de potencia mínima",
		HistoryResult:      map[string]any{"minimum_hp": 150.7},
	}
	queryID, apiErr := store.PersistMinimumPower(context.Background(), snap)
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if queryID != 300 {
		t.Errorf("queryID = %d, want 300", queryID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDecodeObservationsFallsBackOnOlderShape(t *testing.T) {
	got := decodeObservations([]byte(`not valid json`))
	if got.Snapshot["raw"] != "not valid json" {
		t.Errorf("expected raw fallback, got %+v", got)
	}
}

func TestDecodeObservationsDecodesCurrentShape(t *testing.T) {
	got := decodeObservations([]byte(`{"rank":1,"compatibility":92.5,"classification":"OPTIMAL"}`))
	if got.Rank != 1 || got.Compatibility != 92.5 || got.Classification != "OPTIMAL" {
		t.Errorf("unexpected decode: %+v", got)
	}
}
