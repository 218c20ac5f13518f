package warehouse

// StagingEvents holds raw event log records, one per page view.
var StagingEvents = Table{
	Name: "staging_events",
	Kind: Staging,
	Columns: []Column{
		{Name: "artist", Type: Varchar(255)},
		{Name: "auth", Type: Varchar(255), NotNull: true},
		{Name: "firstname", Type: Varchar(255)},
		{Name: "gender", Type: Varchar(1)},
		{Name: "iteminsession", Type: BigInt, NotNull: true},
		{Name: "lastname", Type: Varchar(255)},
		{Name: "length", Type: Float},
		{Name: "level", Type: Varchar(255), NotNull: true},
		{Name: "location", Type: Varchar(255)},
		{Name: "method", Type: Varchar(255), NotNull: true},
		{Name: "page", Type: Varchar(255), NotNull: true},
		{Name: "registration", Type: Float},
		{Name: "sessionid", Type: BigInt, NotNull: true},
		{Name: "song", Type: Varchar(255)},
		{Name: "status", Type: BigInt, NotNull: true},
		{Name: "ts", Type: BigInt, NotNull: true},
		{Name: "useragent", Type: Varchar(4096)},
		{Name: "userid", Type: BigInt},
	},
}

// StagingSongs holds raw song catalog records.
var StagingSongs = Table{
	Name: "staging_songs",
	Kind: Staging,
	Columns: []Column{
		{Name: "num_songs", Type: BigInt, NotNull: true},
		{Name: "artist_id", Type: Varchar(255), NotNull: true},
		{Name: "artist_latitude", Type: Float},
		{Name: "artist_longitude", Type: Float},
		{Name: "artist_location", Type: Varchar(255)},
		{Name: "artist_name", Type: Varchar(255), NotNull: true},
		{Name: "song_id", Type: Varchar(255), NotNull: true},
		{Name: "title", Type: Varchar(255), NotNull: true},
		{Name: "duration", Type: Float, NotNull: true},
		{Name: "year", Type: BigInt},
	},
}

// Songplays is the fact table, one row per NextSong event.
// song_id and artist_id are null when the play has no catalog match.
var Songplays = Table{
	Name: "songplays",
	Kind: Fact,
	Columns: []Column{
		{Name: "songplay_id", Type: BigInt, Identity: true, SortKey: true},
		{Name: "start_time", Type: BigInt, NotNull: true},
		{Name: "user_id", Type: BigInt, NotNull: true},
		{Name: "level", Type: Varchar(32), NotNull: true},
		{Name: "song_id", Type: Varchar(64), DistKey: true},
		{Name: "artist_id", Type: Varchar(64)},
		{Name: "session_id", Type: BigInt, NotNull: true},
		{Name: "location", Type: Varchar(255)},
		{Name: "user_agent", Type: Varchar(4096), NotNull: true},
	},
}

// Users holds one row per distinct user tuple. A user seen with two levels
// has two rows.
var Users = Table{
	Name: "users",
	Kind: Dimension,
	Columns: []Column{
		{Name: "user_id", Type: BigInt, NotNull: true, SortKey: true},
		{Name: "first_name", Type: Varchar(128)},
		{Name: "last_name", Type: Varchar(128)},
		{Name: "gender", Type: Varchar(1)},
		{Name: "level", Type: Varchar(32)},
	},
}

// Songs holds one row per distinct song tuple.
var Songs = Table{
	Name: "songs",
	Kind: Dimension,
	Columns: []Column{
		{Name: "song_id", Type: Varchar(64), NotNull: true, SortKey: true, DistKey: true},
		{Name: "title", Type: Varchar(255), NotNull: true},
		{Name: "artist_id", Type: Varchar(64), NotNull: true},
		{Name: "year", Type: BigInt},
		{Name: "duration", Type: Float},
	},
}

// Artists holds one row per distinct artist tuple.
var Artists = Table{
	Name: "artists",
	Kind: Dimension,
	Columns: []Column{
		{Name: "artist_id", Type: Varchar(64), NotNull: true, SortKey: true},
		{Name: "name", Type: Varchar(255), NotNull: true},
		{Name: "location", Type: Varchar(255)},
		{Name: "latitude", Type: Float},
		{Name: "longitude", Type: Float},
	},
}

// Time holds one row per distinct play timestamp broken into calendar parts.
var Time = Table{
	Name: "time",
	Kind: Dimension,
	Columns: []Column{
		{Name: "start_time", Type: DateTime, NotNull: true, SortKey: true},
		{Name: "hour", Type: BigInt, NotNull: true},
		{Name: "day", Type: BigInt, NotNull: true},
		{Name: "week", Type: BigInt, NotNull: true},
		{Name: "month", Type: BigInt, NotNull: true},
		{Name: "year", Type: BigInt, NotNull: true},
		{Name: "weekday", Type: BigInt, NotNull: true},
	},
}

// Tables returns every table in pipeline order: staging tables first, then
// the fact table, then the dimensions.
func Tables() []Table {
	return []Table{StagingEvents, StagingSongs, Songplays, Users, Songs, Artists, Time}
}

// Lookup returns the table with the given name.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
