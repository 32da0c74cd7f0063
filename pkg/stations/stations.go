// Package stations serves the static police-station directory. The data is
// compiled in; there is no upstream registry to sync from.
package stations

import (
	"github.com/samber/lo"

	"crimewatch/pkg/models"
)

// EmergencyNotice is shown alongside the directory on every listing.
const EmergencyNotice = "In case of emergency, please dial your local emergency number immediately. Do not wait to report through this platform."

var directory = []models.Station{
	{
		ID:       1,
		Name:     "Central Police Station",
		Address:  "Harry Thuku Road",
		Phone:    "020 222222, 0721 337999",
		Hours:    "24/7",
		Services: []string{"Emergency Response", "Criminal Investigation", "Community Policing"},
	},
	{
		ID:       2,
		Name:     "North District Station",
		Address:  "Nairobi",
		Phone:    "Not available",
		Hours:    "24/7",
		Services: []string{"Traffic Division", "Special Operations", "Public Safety"},
	},
	{
		ID:       3,
		Name:     "South Precinct",
		Address:  "Nairobi",
		Phone:    "Not available",
		Hours:    "24/7",
		Services: []string{"Patrol Unit", "Detective Bureau", "Community Outreach"},
	},
	{
		ID:       4,
		Name:     "Kasarani Police Station",
		Address:  "Kamiti Road, off Thika Road",
		Phone:    "020 803366, 0721 338999, 020-8563222, 020-8560756",
		Hours:    "24/7",
		Services: []string{"Emergency Services"},
	},
	{
		ID:       5,
		Name:     "Kabete Police Station",
		Address:  "Waiyaki Way",
		Phone:    "020 632222, 0721-365 999",
		Hours:    "24/7",
		Services: []string{"Gender Desk"},
	},
	{
		ID:       6,
		Name:     "Parklands Police Station",
		Address:  "Parklands Road",
		Phone:    "020 742238 / 632222, 0721-364 999, 020-3742238, 020-3746115",
		Hours:    "24/7",
		Services: []string{},
	},
	{
		ID:       7,
		Name:     "Gigiri Police Station",
		Address:  "United Nations Cres",
		Phone:    "020 521 353, 0721 363999, 020-7120629",
		Hours:    "24/7",
		Services: []string{},
	},
	{
		ID:       8,
		Name:     "Kilimani Police Station",
		Address:  "Jabavu Road",
		Phone:    "020 722222, 0721-368 999, 020-2721683, 020-2710392, 020-2728885",
		Hours:    "24/7",
		Services: []string{"Gender Desk", "Children's Protection Unit", "Medical Clinic"},
	},
	{
		ID:       9,
		Name:     "Buru Buru Police Station",
		Address:  "Mumias South Road",
		Phone:    "020 792900, 0721 327 999, 020-787404, 020-787038, 020-783584, 020-786878, 020-3531864",
		Hours:    "24/7",
		Services: []string{"Child Protection Area"},
	},
	{
		ID:       10,
		Name:     "Embakasi Police Station",
		Address:  "Rd to Utawala Academy, Embakasi Road",
		Phone:    "020 823155 / 823210, 0721-359 999, 020-823200",
		Hours:    "24/7",
		Services: []string{},
	},
}

// All returns the full directory in display order. Callers get a copy.
func All() []models.Station {
	return append([]models.Station(nil), directory...)
}

// ByID looks a station up by its numeric id.
func ByID(id int) (models.Station, bool) {
	st, ok := lo.Find(directory, func(s models.Station) bool { return s.ID == id })
	return st, ok
}

// WithService returns stations advertising the given service, matched
// exactly.
func WithService(service string) []models.Station {
	return lo.Filter(directory, func(s models.Station, _ int) bool {
		return lo.Contains(s.Services, service)
	})
}
