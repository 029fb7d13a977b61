package calendar

import "github.com/amjkhan-git/HMCC-Calendar/internal/models"

// DateDefinition is one entry of the fixed calendar.
type DateDefinition struct {
	Date          string
	ReligiousDate string
	ReligiousDay  int
	Weekday       string
	InitialStatus models.BookingStatus
}

// SpecialNight marks a possible Laylat al-Qadr.
type SpecialNight struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Ramadan1447 is the sponsorship calendar for Ramadan 1447 (Feb 18 - Mar 19 2026)
// followed by Eid ul Fitr.
var Ramadan1447 = []DateDefinition{
	{"2026-02-18", "1 Ramadan 1447", 1, "Wednesday", models.StatusBlocked},
	{"2026-02-19", "2 Ramadan 1447", 2, "Thursday", models.StatusBlocked},
	{"2026-02-20", "3 Ramadan 1447", 3, "Friday", models.StatusBlocked},
	{"2026-02-21", "4 Ramadan 1447", 4, "Saturday", models.StatusOrgSponsored},
	{"2026-02-22", "5 Ramadan 1447", 5, "Sunday", models.StatusAvailable},
	{"2026-02-23", "6 Ramadan 1447", 6, "Monday", models.StatusAvailable},
	{"2026-02-24", "7 Ramadan 1447", 7, "Tuesday", models.StatusAvailable},
	{"2026-02-25", "8 Ramadan 1447", 8, "Wednesday", models.StatusAvailable},
	{"2026-02-26", "9 Ramadan 1447", 9, "Thursday", models.StatusAvailable},
	{"2026-02-27", "10 Ramadan 1447", 10, "Friday", models.StatusAvailable},
	{"2026-02-28", "11 Ramadan 1447", 11, "Saturday", models.StatusAvailable},
	{"2026-03-01", "12 Ramadan 1447", 12, "Sunday", models.StatusAvailable},
	{"2026-03-02", "13 Ramadan 1447", 13, "Monday", models.StatusAvailable},
	{"2026-03-03", "14 Ramadan 1447", 14, "Tuesday", models.StatusAvailable},
	{"2026-03-04", "15 Ramadan 1447", 15, "Wednesday", models.StatusAvailable},
	{"2026-03-05", "16 Ramadan 1447", 16, "Thursday", models.StatusAvailable},
	{"2026-03-06", "17 Ramadan 1447", 17, "Friday", models.StatusAvailable},
	{"2026-03-07", "18 Ramadan 1447", 18, "Saturday", models.StatusAvailable},
	{"2026-03-08", "19 Ramadan 1447", 19, "Sunday", models.StatusAvailable},
	{"2026-03-09", "20 Ramadan 1447", 20, "Monday", models.StatusAvailable},
	{"2026-03-10", "21 Ramadan 1447", 21, "Tuesday", models.StatusAvailable},
	{"2026-03-11", "22 Ramadan 1447", 22, "Wednesday", models.StatusAvailable},
	{"2026-03-12", "23 Ramadan 1447", 23, "Thursday", models.StatusAvailable},
	{"2026-03-13", "24 Ramadan 1447", 24, "Friday", models.StatusAvailable},
	{"2026-03-14", "25 Ramadan 1447", 25, "Saturday", models.StatusAvailable},
	{"2026-03-15", "26 Ramadan 1447", 26, "Sunday", models.StatusAvailable},
	{"2026-03-16", "27 Ramadan 1447", 27, "Monday", models.StatusAvailable},
	{"2026-03-17", "28 Ramadan 1447", 28, "Tuesday", models.StatusAvailable},
	{"2026-03-18", "29 Ramadan 1447", 29, "Wednesday", models.StatusAvailable},
	{"2026-03-19", "30 Ramadan 1447", 30, "Thursday", models.StatusAvailable},
	{"2026-03-20", "1 Shawwal 1447 - Eid ul Fitr", 0, "Friday", models.StatusHoliday},
}

var specialNights = map[string]SpecialNight{
	"2026-03-10": {Name: "21st Night", Description: "Possible Laylat al-Qadr"},
	"2026-03-12": {Name: "23rd Night", Description: "Possible Laylat al-Qadr"},
	"2026-03-14": {Name: "25th Night", Description: "Possible Laylat al-Qadr"},
	"2026-03-16": {Name: "27th Night", Description: "Most Likely Laylat al-Qadr"},
	"2026-03-18": {Name: "29th Night", Description: "Possible Laylat al-Qadr"},
}

// SpecialNightFor returns the special-night annotation for date, if any.
func SpecialNightFor(date string) (SpecialNight, bool) {
	n, ok := specialNights[date]
	return n, ok
}
