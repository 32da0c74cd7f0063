package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"crimewatch/pkg/models"
	"crimewatch/pkg/stations"
	"crimewatch/pkg/utils"
)

// RegisterStations registers the station directory. It is reachable
// without a session.
func RegisterStations(r *mux.Router) {
	r.HandleFunc("/stations", listStations).Methods(http.MethodGet)
	r.HandleFunc("/stations/{id}", getStation).Methods(http.MethodGet)
}

func listStations(w http.ResponseWriter, r *http.Request) {
	list := stations.All()
	if svc := r.URL.Query().Get("service"); svc != "" {
		list = stations.WithService(svc)
	}
	if list == nil {
		list = []models.Station{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Stations []models.Station `json:"stations"`
		Notice   string           `json:"notice"`
	}{Stations: list, Notice: stations.EmergencyNotice})
}

func getStation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid station id")
		return
	}
	st, ok := stations.ByID(id)
	if !ok {
		utils.JSONError(w, http.StatusNotFound, "station not found")
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, st)
}
