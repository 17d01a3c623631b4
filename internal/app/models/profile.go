package models

// Choices accepted by the candidate profile
var (
	TravelAssistanceChoices = []string{"all", "some", "none"}
	GenderChoices           = []string{"male", "female", "prefer_not_to_say", "other"}
	PermissionChoices       = []string{"yes", "no"}
	TourChoices             = []string{"Campus Tour", "Community Tour w/Realtor", "Not at this time"}
)

// CandidateProfile holds the professional, travel and talk details a
// candidate provides during setup
type CandidateProfile struct {
	ID                      int64    `json:"id,omitempty"`
	CurrentTitle            string   `json:"current_title"`
	CurrentDepartment       string   `json:"current_department"`
	CurrentInstitution      string   `json:"current_institution"`
	ResearchInterests       string   `json:"research_interests"`
	CellNumber              string   `json:"cell_number"`
	TravelAssistance        string   `json:"travel_assistance"`
	PassportName            string   `json:"passport_name"`
	DateOfBirth             Date     `json:"date_of_birth"`
	CountryOfResidence      string   `json:"country_of_residence"`
	Gender                  string   `json:"gender"`
	GenderCustom            string   `json:"gender_custom,omitempty"`
	PreferredAirport        string   `json:"preferred_airport"`
	FrequentFlyerInfo       string   `json:"frequent_flyer_info,omitempty"`
	KnownTravelerNumber     string   `json:"known_traveler_number,omitempty"`
	TalkTitle               string   `json:"talk_title"`
	Abstract                string   `json:"abstract"`
	Biography               string   `json:"biography"`
	VideotapePermission     string   `json:"videotape_permission,omitempty"`
	AdvertisementPermission string   `json:"advertisement_permission,omitempty"`
	ExtraTours              string   `json:"extra_tours,omitempty"`
	PreferredVisitDates     string   `json:"preferred_visit_dates,omitempty"`
	FoodPreferences         []string `json:"food_preferences"`
	DietaryRestrictions     []string `json:"dietary_restrictions"`
	PreferredFaculty        []int64  `json:"preferred_faculty"`
	Headshot                string   `json:"headshot,omitempty"`
}
