// Package export renders candidate itineraries as downloadable HTML, plain
// text for Google Docs, and e-mail bodies.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/yigit/visitportal/internal/app/models"
)

const (
	dayLayout  = "Monday, January 2, 2006"
	timeLayout = "3:04 PM"
)

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Entry is one meeting on the itinerary
type Entry struct {
	Day         string
	Start       string
	End         string
	Description string
	Location    string
	With        []string
}

// Itinerary is the printable schedule of one candidate's visit
type Itinerary struct {
	CandidateName       string
	CandidateLastName   string
	CandidateEmail      string
	SeasonTitle         string
	Arrival             string
	Leaving             string
	Location            string
	NeedsTransportation bool
	Entries             []Entry
	GeneratedAt         time.Time
}

// NewItinerary builds an itinerary from a section of a season. Slots are
// ordered by start time and shown in loc; hidden slots are left out.
func NewItinerary(season models.Season, section models.CandidateSection, loc *time.Location) *Itinerary {
	if loc == nil {
		loc = time.Local
	}
	slots := make([]models.TimeSlot, 0, len(section.TimeSlots))
	for _, s := range section.TimeSlots {
		if s.Visible() {
			slots = append(slots, s)
		}
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].StartTime.Before(slots[j].StartTime) })

	it := &Itinerary{
		CandidateName:       section.Candidate.FullName(),
		CandidateLastName:   section.Candidate.LastName,
		CandidateEmail:      section.Candidate.Email,
		SeasonTitle:         season.Title,
		Arrival:             section.ArrivalDate.Format(dayLayout),
		Leaving:             section.LeavingDate.Format(dayLayout),
		Location:            section.Location,
		NeedsTransportation: section.NeedsTransportation,
		GeneratedAt:         time.Now().In(loc),
	}
	for _, s := range slots {
		start := s.StartTime.In(loc)
		e := Entry{
			Day:         start.Format(dayLayout),
			Start:       start.Format(timeLayout),
			Description: s.Description,
			Location:    s.Location,
		}
		if s.EndTime != nil {
			e.End = s.EndTime.In(loc).Format(timeLayout)
		}
		for _, a := range s.Attendees {
			e.With = append(e.With, a.User.FullName())
		}
		it.Entries = append(it.Entries, e)
	}
	return it
}

// Filename is the download name, Itinerary_<last_name>.html
func (it *Itinerary) Filename() string {
	name := unsafeFilename.ReplaceAllString(it.CandidateLastName, "_")
	if strings.Trim(name, "_") == "" {
		name = "Candidate"
	}
	return "Itinerary_" + name + ".html"
}

// Title is used for documents and e-mail subjects
func (it *Itinerary) Title() string {
	return fmt.Sprintf("Itinerary for %s - %s", it.CandidateName, it.SeasonTitle)
}

// Render writes the standalone HTML document
func (it *Itinerary) Render(w io.Writer) error {
	return itineraryTemplate.Execute(w, it)
}

// HTML returns the rendered document
func (it *Itinerary) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := it.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PlainText renders the itinerary for text-only targets such as Google Docs
func (it *Itinerary) PlainText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", it.Title())
	fmt.Fprintf(&b, "Candidate: %s\n", it.CandidateName)
	fmt.Fprintf(&b, "Season: %s\n", it.SeasonTitle)
	if it.Arrival != "" || it.Leaving != "" {
		fmt.Fprintf(&b, "Visit: %s to %s\n", it.Arrival, it.Leaving)
	}
	if it.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", it.Location)
	}
	if it.NeedsTransportation {
		b.WriteString("Transportation: requested\n")
	}
	day := ""
	for _, e := range it.Entries {
		if e.Day != day {
			day = e.Day
			fmt.Fprintf(&b, "\n%s\n", day)
		}
		when := e.Start
		if e.End != "" {
			when += " - " + e.End
		}
		fmt.Fprintf(&b, "%s  %s", when, e.Description)
		if e.Location != "" {
			fmt.Fprintf(&b, " (%s)", e.Location)
		}
		if len(e.With) > 0 {
			fmt.Fprintf(&b, " with %s", strings.Join(e.With, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

var itineraryTemplate = template.Must(template.New("itinerary").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; max-width: 800px; margin: 2em auto; color: #222; }
h1 { font-size: 1.6em; margin-bottom: 0.2em; }
table { width: 100%; border-collapse: collapse; margin-top: 1em; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #ddd; vertical-align: top; }
.day { background: #f3f3f3; font-weight: bold; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>{{.CandidateName}}</h1>
<p class="meta">{{.SeasonTitle}}</p>
{{if or .Arrival .Leaving}}<p>Visit: {{.Arrival}} &ndash; {{.Leaving}}</p>{{end}}
{{if .Location}}<p>Location: {{.Location}}</p>{{end}}
{{if .NeedsTransportation}}<p>Transportation has been requested.</p>{{end}}
{{if .Entries}}
<table>
<thead><tr><th>Time</th><th>Meeting</th><th>Location</th><th>With</th></tr></thead>
<tbody>
{{$day := ""}}{{range .Entries}}{{if ne .Day $day}}{{$day = .Day}}<tr class="day"><td colspan="4">{{.Day}}</td></tr>{{end}}
<tr><td>{{.Start}}{{if .End}} &ndash; {{.End}}{{end}}</td><td>{{.Description}}</td><td>{{.Location}}</td><td>{{range $i, $n := .With}}{{if $i}}, {{end}}{{$n}}{{end}}</td></tr>
{{end}}
</tbody>
</table>
{{else}}
<p>No meetings have been scheduled yet.</p>
{{end}}
<p class="meta">Generated {{.GeneratedAt.Format "January 2, 2006 3:04 PM MST"}}</p>
</body>
</html>
`))
