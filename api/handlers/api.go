package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/odontoforense/odonto-legal-api/api"
	"github.com/odontoforense/odonto-legal-api/api/scheduler"
	"github.com/odontoforense/odonto-legal-api/config"
	"github.com/odontoforense/odonto-legal-api/databases"
	"github.com/odontoforense/odonto-legal-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{
		DB:  databases.NewUserDatabase(a.dbHelper),
		TDB: databases.NewTokenDatabase(a.dbHelper),
	}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	c := Caso{DB: databases.NewCasoDatabase(a.dbHelper)}
	p := Periciado{DB: databases.NewPericiadoDatabase(a.dbHelper), CDB: databases.NewCasoDatabase(a.dbHelper)}
	e := Evidencia{DB: databases.NewEvidenciaDatabase(a.dbHelper), CDB: databases.NewCasoDatabase(a.dbHelper)}
	pe := Perito{DB: databases.NewPeritoDatabase(a.dbHelper), CDB: databases.NewCasoDatabase(a.dbHelper)}
	l := Laudo{DB: databases.NewLaudoDatabase(a.dbHelper), UDB: databases.NewUserDatabase(a.dbHelper), CDB: databases.NewCasoDatabase(a.dbHelper)}
	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	d := Dashboard{
		CDB:  databases.NewCasoDatabase(a.dbHelper),
		PDB:  databases.NewPericiadoDatabase(a.dbHelper),
		EDB:  databases.NewEvidenciaDatabase(a.dbHelper),
		Snap: databases.NewSnapshotDatabase(a.dbHelper),
	}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(api.DefaultRequestTimeout))

	apiCreate.Handle("/auth/login", http.HandlerFunc(m.Login)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(m.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/case", api.Middleware(http.HandlerFunc(c.CreateCasoHandler))).Methods("POST")
	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CasoHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.CasoByIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.UpdateCasoHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.PatchCasoStatusHandler))).Methods("PATCH")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.DeleteCasoHandler))).Methods("DELETE")

	apiCreate.Handle("/periciado", api.Middleware(http.HandlerFunc(p.CreatePericiadoHandler))).Methods("POST")
	apiCreate.Handle("/periciados/case/{case_id}", api.Middleware(http.HandlerFunc(p.PericiadosByCaseIDHandler))).Methods("GET")
	apiCreate.Handle("/periciado/{periciado_id}", api.Middleware(http.HandlerFunc(p.PericiadoByIDHandler))).Methods("GET")
	apiCreate.Handle("/periciado/{periciado_id}", api.Middleware(http.HandlerFunc(p.UpdatePericiadoHandler))).Methods("PUT")
	apiCreate.Handle("/periciado/{periciado_id}", api.Middleware(http.HandlerFunc(p.DeletePericiadoHandler))).Methods("DELETE")
	apiCreate.Handle("/periciado/{periciado_id}/odontograma", api.Middleware(http.HandlerFunc(p.OdontogramaHandler))).Methods("GET")
	apiCreate.Handle("/periciado/{periciado_id}/odontograma", api.Middleware(http.HandlerFunc(p.ReplaceOdontogramaHandler))).Methods("PATCH")

	apiCreate.Handle("/evidence", api.Middleware(http.HandlerFunc(e.CreateEvidenciaHandler))).Methods("POST")
	apiCreate.Handle("/evidence/upload", api.Middleware(http.HandlerFunc(e.UploadEvidenciaImageHandler))).Methods("POST")
	apiCreate.Handle("/evidences/case/{case_id}", api.Middleware(http.HandlerFunc(e.EvidenciasByCaseIDHandler))).Methods("GET")
	apiCreate.Handle("/evidence/{evidence_id}", api.Middleware(http.HandlerFunc(e.EvidenciaByIDHandler))).Methods("GET")
	apiCreate.Handle("/evidence/{evidence_id}", api.Middleware(http.HandlerFunc(e.UpdateEvidenciaHandler))).Methods("PUT")
	apiCreate.Handle("/evidence/{evidence_id}", api.Middleware(http.HandlerFunc(e.DeleteEvidenciaHandler))).Methods("DELETE")

	apiCreate.Handle("/perito", api.Middleware(http.HandlerFunc(pe.CreatePeritoHandler))).Methods("POST")
	apiCreate.Handle("/peritos/case/{case_id}", api.Middleware(http.HandlerFunc(pe.PeritosByCaseIDHandler))).Methods("GET")
	apiCreate.Handle("/perito/{perito_id}", api.Middleware(http.HandlerFunc(pe.PeritoByIDHandler))).Methods("GET")
	apiCreate.Handle("/perito/{perito_id}", api.Middleware(http.HandlerFunc(pe.UpdatePeritoHandler))).Methods("PUT")
	apiCreate.Handle("/perito/{perito_id}", api.Middleware(http.HandlerFunc(pe.DeletePeritoHandler))).Methods("DELETE")

	apiCreate.Handle("/laudo", api.Middleware(http.HandlerFunc(l.CreateLaudoHandler))).Methods("POST")
	apiCreate.Handle("/laudos/case/{case_id}", api.Middleware(http.HandlerFunc(l.LaudosByCaseIDHandler))).Methods("GET")
	apiCreate.Handle("/laudo/{laudo_id}", api.Middleware(http.HandlerFunc(l.LaudoByIDHandler))).Methods("GET")
	apiCreate.Handle("/laudo/{laudo_id}/sign", api.Middleware(http.HandlerFunc(l.SignLaudoHandler))).Methods("POST")
	apiCreate.Handle("/laudo/{laudo_id}/pdf", api.Middleware(http.HandlerFunc(l.GenerateLaudoPDFHandler))).Methods("POST")
	apiCreate.Handle("/laudo/{laudo_id}/pdf", api.Middleware(http.HandlerFunc(l.DownloadLaudoPDFHandler))).Methods("GET")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")

	apiCreate.Handle("/dashboard/summary", api.Middleware(http.HandlerFunc(d.SummaryHandler))).Methods("GET")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("odonto-legal-api has connected to the database")

	a.Scheduler = scheduler.NewScheduler(
		databases.NewTokenDatabase(a.dbHelper),
		databases.NewCasoDatabase(a.dbHelper),
		databases.NewPericiadoDatabase(a.dbHelper),
		databases.NewEvidenciaDatabase(a.dbHelper),
		databases.NewSnapshotDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
