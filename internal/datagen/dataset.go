package datagen

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-dwh-etl/internal/datagen/profiles"
)

// Milliseconds between consecutive events of a session.
const (
	minItemGap = 30 * 1000
	maxItemGap = 5 * 60 * 1000
)

// Pages of the event log.
const (
	PageNextSong      = "NextSong"
	PageHome          = "Home"
	PageLogin         = "Login"
	PageLogout        = "Logout"
	PageSettings      = "Settings"
	PageSubmitUpgrade = "Submit Upgrade"
)

// SongRecord is one song object. Field order follows the source dataset.
type SongRecord struct {
	NumSongs        int      `json:"num_songs"`
	ArtistID        string   `json:"artist_id"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	ArtistLocation  string   `json:"artist_location"`
	ArtistName      string   `json:"artist_name"`
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	Duration        float64  `json:"duration"`
	Year            int      `json:"year"`
}

// Event is one line of an event log. Logged-out events carry null user
// fields and an empty userId.
type Event struct {
	Artist        *string  `json:"artist"`
	Auth          string   `json:"auth"`
	FirstName     *string  `json:"firstName"`
	Gender        *string  `json:"gender"`
	ItemInSession int      `json:"itemInSession"`
	LastName      *string  `json:"lastName"`
	Length        *float64 `json:"length"`
	Level         string   `json:"level"`
	Location      *string  `json:"location"`
	Method        string   `json:"method"`
	Page          string   `json:"page"`
	Registration  *float64 `json:"registration"`
	SessionID     int      `json:"sessionId"`
	Song          *string  `json:"song"`
	Status        int      `json:"status"`
	TS            int64    `json:"ts"`
	UserAgent     *string  `json:"userAgent"`
	UserID        string   `json:"userId"`
}

// eventKeys lists the event keys in staging_events column order.
var eventKeys = []string{
	"artist", "auth", "firstName", "gender", "itemInSession", "lastName",
	"length", "level", "location", "method", "page", "registration",
	"sessionId", "song", "status", "ts", "userAgent", "userId",
}

// JSONPathsDocument is the JSONPaths file for the event logs.
type JSONPathsDocument struct {
	JSONPaths []string `json:"jsonpaths"`
}

// JSONPaths returns the JSONPaths document mapping event keys onto the
// staging_events columns.
func JSONPaths() JSONPathsDocument {
	paths := make([]string, len(eventKeys))
	for i, k := range eventKeys {
		paths[i] = fmt.Sprintf("$['%s']", k)
	}
	return JSONPathsDocument{JSONPaths: paths}
}

type song struct {
	trackID string
	record  SongRecord
}

func (s song) path() []string {
	id := s.trackID
	return []string{SongDataDir, id[2:3], id[3:4], id[4:5], id + ".json"}
}

type artist struct {
	id        string
	name      string
	location  string
	latitude  *float64
	longitude *float64
}

type user struct {
	id           int
	firstName    string
	lastName     string
	gender       string
	location     string
	userAgent    string
	registration float64
	upgradeDay   int
}

func (u user) level(day int) string {
	if u.upgradeDay >= 0 && day >= u.upgradeDay {
		return "paid"
	}
	return "free"
}

type logDay struct {
	date   time.Time
	events []Event
}

func (d logDay) path() []string {
	return []string{
		LogDataDir,
		d.date.Format("2006"),
		d.date.Format("01"),
		d.date.Format("2006-01-02") + "-events.json",
	}
}

type dataset struct {
	songs     []song
	days      []logDay
	unmatched int
}

// buildDataset draws the whole dataset from f in a fixed order, so equal
// seeds give equal output.
func buildDataset(f *Faker, cfg Config) *dataset {
	ds := &dataset{}

	artists := make([]artist, max(1, cfg.Songs/2))
	for i := range artists {
		a := artist{id: f.Code("AR", 16)}
		if f.Chance(0.5) {
			a.name = f.Name()
		} else {
			a.name = "The " + f.Title(1) + "s"
		}
		if f.Chance(0.6) {
			a.location = f.Location()
			lat, lon := round(f.Latitude(), 5), round(f.Longitude(), 5)
			a.latitude, a.longitude = &lat, &lon
		} else if f.Chance(0.5) {
			a.location = f.City()
		}
		artists[i] = a
	}

	for i := 0; i < cfg.Songs; i++ {
		a := artists[i%len(artists)]
		year := 0
		if f.Chance(0.7) {
			year = f.Int(1960, 2018)
		}
		ds.songs = append(ds.songs, song{
			trackID: f.Code("TR", 16),
			record: SongRecord{
				NumSongs:        1,
				ArtistID:        a.id,
				ArtistLatitude:  a.latitude,
				ArtistLongitude: a.longitude,
				ArtistLocation:  a.location,
				ArtistName:      a.name,
				SongID:          f.Code("SO", 16),
				Title:           f.Title(f.Int(1, 4)),
				Duration:        round(f.Float64(90, 420), 5),
				Year:            year,
			},
		})
	}

	users := make([]user, cfg.Users)
	for i := range users {
		u := user{
			id:           i + 1,
			firstName:    f.FirstName(),
			lastName:     f.LastName(),
			gender:       f.Gender(),
			location:     f.Location(),
			userAgent:    f.UserAgent(),
			registration: float64(cfg.Start.AddDate(0, -f.Int(1, 12), 0).UnixMilli()),
			upgradeDay:   -1,
		}
		switch {
		case f.Chance(0.3):
			u.upgradeDay = 0
		case f.Chance(0.2):
			u.upgradeDay = f.Int(0, cfg.Days-1)
		}
		users[i] = u
	}

	hours := make([]int, 24)
	for h := range hours {
		hours[h] = h
	}

	sessionID := 0
	for day := 0; day < cfg.Days; day++ {
		date := cfg.Start.AddDate(0, 0, day)
		dayEnd := date.AddDate(0, 0, 1).UnixMilli()
		weights := profiles.HourWeights(cfg.Profile, date)
		ld := logDay{date: date}

		for n := 0; n < cfg.EventsPerDay; {
			sessionID++
			// Every day opens with a logged-out visitor.
			loggedIn := f.Chance(0.9) && n > 0
			u := Choose(f, users)
			items := min(f.Int(1, 8), cfg.EventsPerDay-n)

			hour := ChooseWeighted(f, hours, weights)
			ts := date.Add(time.Duration(hour)*time.Hour).UnixMilli() + int64(f.Int(0, 3599999))
			// Sessions end before midnight.
			ts = min(ts, dayEnd-int64(items*maxItemGap)-1)

			for item := 0; item < items; item++ {
				var e Event
				if loggedIn {
					e = ds.loggedInEvent(f, u, day, item, items)
				} else {
					e = loggedOutEvent(item)
				}
				e.SessionID = sessionID
				e.ItemInSession = item
				e.TS = ts
				ld.events = append(ld.events, e)
				ts += int64(f.Int(minItemGap, maxItemGap))
				n++
			}
		}

		sort.SliceStable(ld.events, func(i, j int) bool {
			return ld.events[i].TS < ld.events[j].TS
		})
		ds.days = append(ds.days, ld)
	}

	return ds
}

func (ds *dataset) loggedInEvent(f *Faker, u user, day, item, items int) Event {
	e := Event{
		Auth:         "Logged In",
		FirstName:    ptr(u.firstName),
		Gender:       ptr(u.gender),
		LastName:     ptr(u.lastName),
		Level:        u.level(day),
		Location:     ptr(u.location),
		Registration: ptr(u.registration),
		UserAgent:    ptr(u.userAgent),
		UserID:       strconv.Itoa(u.id),
		Status:       200,
	}

	page := ChooseWeighted(f,
		[]string{PageNextSong, PageHome, PageSettings, PageLogout},
		[]int{80, 10, 5, 5})
	if u.upgradeDay == day && day > 0 && item == 0 {
		page = PageSubmitUpgrade
	}
	if item == items-1 && page == PageLogout {
		page = PageHome
	}
	e.Page = page

	switch page {
	case PageNextSong:
		e.Method = "PUT"
		if f.Chance(0.85) && ds.unmatched > 0 {
			s := Choose(f, ds.songs).record
			e.Artist, e.Song, e.Length = ptr(s.ArtistName), ptr(s.Title), ptr(s.Duration)
		} else {
			// A play of a track missing from the song catalog.
			ds.unmatched++
			e.Artist = ptr(f.Name() + " & " + f.Title(1))
			e.Song = ptr(f.Title(2) + " (Live)")
			e.Length = ptr(round(f.Float64(90, 420), 5))
		}
	case PageSubmitUpgrade:
		e.Method = "PUT"
		e.Status = 307
		e.Level = "free"
	case PageLogout:
		e.Method = "PUT"
		e.Status = 307
	default:
		e.Method = "GET"
	}
	return e
}

func loggedOutEvent(item int) Event {
	e := Event{
		Auth:   "Logged Out",
		Level:  "free",
		Method: "GET",
		Page:   PageHome,
		Status: 200,
	}
	if item > 0 {
		e.Method = "PUT"
		e.Page = PageLogin
		e.Status = 307
	}
	return e
}

func ptr[T any](v T) *T {
	return &v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
