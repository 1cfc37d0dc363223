package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/odontoforense/odonto-legal-api/api/handlers"
	"github.com/odontoforense/odonto-legal-api/databases"
	mocksdb "github.com/odontoforense/odonto-legal-api/databases/mocks"
	"github.com/odontoforense/odonto-legal-api/models"
)

func TestDashboard_SummaryHandlerFallsBackToSnapshot(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/v1/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	casoConn := &mocksdb.CollectionHelper{}
	snapConn := &mocksdb.CollectionHelper{}
	snapResult := &mocksdb.SingleResultHelper{}

	casoConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), errors.New("server selection timeout"))
	snapResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.DashboardSnapshot)
		(*arg).Summary = models.DashboardSummary{
			TotalCasos: 7,
			PorStatus:  map[string]int64{models.CaseStatusInProgress: 7},
		}
	})
	snapConn.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(snapResult)
	db.On("Collection", "casos").Return(casoConn)
	db.On("Collection", "dashboard_snapshots").Return(snapConn)

	d := handlers.Dashboard{
		CDB:  databases.NewCasoDatabase(db),
		PDB:  databases.NewPericiadoDatabase(db),
		EDB:  databases.NewEvidenciaDatabase(db),
		Snap: databases.NewSnapshotDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.SummaryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"totalCasos":7`)
}

func TestDashboard_SummaryHandlerFilteredRequestDoesNotUseSnapshot(t *testing.T) {
	// a snapshot holds unfiltered numbers, so a filtered request must fail
	// loudly instead of answering from it
	req, _ := http.NewRequest("GET", "/api/v1/dashboard/summary?sexo=feminino", nil)
	req.Header.Set("Authorization", "Bearer abc123")

	db := &mocksdb.DatabaseHelper{}
	casoConn := &mocksdb.CollectionHelper{}

	casoConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), errors.New("server selection timeout"))
	db.On("Collection", "casos").Return(casoConn)

	d := handlers.Dashboard{
		CDB:  databases.NewCasoDatabase(db),
		PDB:  databases.NewPericiadoDatabase(db),
		EDB:  databases.NewEvidenciaDatabase(db),
		Snap: databases.NewSnapshotDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.SummaryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to build dashboard summary")
	db.AssertNotCalled(t, "Collection", "dashboard_snapshots")
}

func TestDashboard_SummaryHandlerInvalidStartDate(t *testing.T) {
	req, _ := http.NewRequest("GET", "/api/v1/dashboard/summary?start=ontem", nil)
	req.Header.Set("Authorization", "Bearer abc123")

	d := handlers.Dashboard{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.SummaryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid start date")
}
