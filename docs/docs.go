// Package docs Odonto Legal API.
//
// Documentation of the Odonto Legal forensic odontology case management API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://odonto-legal-api.herokuapp.com
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/odontoforense/odonto-legal-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/case/{case_id} casos casoByID
// Gets a single caso by ID.
// responses:
//   200: casoByIDResponse

// Shows a single caso by the given {ID}
// swagger:response casoByIDResponse
type casoByIDResponseWrapper struct {
	// in:body
	Body models.Caso
}

// swagger:route GET /api/v1/cases casos casoList
// Lists all casos, paginated.
// responses:
//   200: casoListResponse

// Shows all casos, newest first.
// swagger:response casoListResponse
type casoListResponseWrapper struct {
	// in:body
	Body []models.Caso
}

// swagger:route GET /api/v1/periciado/{periciado_id}/odontograma periciados odontogramaByPericiado
// Gets a periciado's dental chart.
// responses:
//   200: odontogramaResponse

// Shows the dental chart as a list of tooth/damage pairs.
// swagger:response odontogramaResponse
type odontogramaResponseWrapper struct {
	// in:body
	Body []models.OdontogramaItem
}

// swagger:route GET /api/v1/dashboard/summary dashboard dashboardSummary
// Gets the dashboard breakdowns.
// responses:
//   200: dashboardSummaryResponse

// Shows the status/type/sex/ethnicity breakdowns.
// swagger:response dashboardSummaryResponse
type dashboardSummaryResponseWrapper struct {
	// in:body
	Body models.DashboardSummary
}
