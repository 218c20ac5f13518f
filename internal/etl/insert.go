//-------------------------------------------------------------------------
//
// pgEdge DWH ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package etl

// Every transform deduplicates on its full output tuple only. Users and
// artists seen with differing attributes keep one row per variant, and two
// plays identical in every selected column collapse into one songplay.

const songplayTableInsert = `
INSERT INTO songplays (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
SELECT DISTINCT
    e.ts,
    e.userid,
    e.level,
    s.song_id,
    s.artist_id,
    e.sessionid,
    e.location,
    e.useragent
FROM staging_events e
LEFT JOIN staging_songs s ON e.artist = s.artist_name AND e.song = s.title
WHERE e.page = 'NextSong'`

const userTableInsert = `
INSERT INTO users (user_id, first_name, last_name, gender, level)
SELECT DISTINCT
    userid,
    firstname,
    lastname,
    gender,
    level
FROM staging_events
WHERE userid IS NOT NULL`

const songTableInsert = `
INSERT INTO songs (song_id, title, artist_id, year, duration)
SELECT DISTINCT
    song_id,
    title,
    artist_id,
    CASE WHEN year = 0 OR year IS NULL THEN NULL ELSE year END,
    duration
FROM staging_songs`

const artistTableInsert = `
INSERT INTO artists (artist_id, name, location, latitude, longitude)
SELECT DISTINCT
    artist_id,
    artist_name,
    artist_location,
    artist_latitude,
    artist_longitude
FROM staging_songs`

// ts is epoch milliseconds; integer division truncates to whole seconds.
// 'dow' is accepted by both Redshift and PostgreSQL ('weekday' only by Redshift).
const timeTableInsert = `
INSERT INTO time (start_time, hour, day, week, month, year, weekday)
SELECT DISTINCT
    (timestamp 'epoch' + ts/1000 * interval '1 second')::timestamp,
    DATE_PART('hour', timestamp 'epoch' + ts/1000 * interval '1 second')::int,
    DATE_PART('day', timestamp 'epoch' + ts/1000 * interval '1 second')::int,
    DATE_PART('week', timestamp 'epoch' + ts/1000 * interval '1 second')::int,
    DATE_PART('month', timestamp 'epoch' + ts/1000 * interval '1 second')::int,
    DATE_PART('year', timestamp 'epoch' + ts/1000 * interval '1 second')::int,
    DATE_PART('dow', timestamp 'epoch' + ts/1000 * interval '1 second')::int
FROM staging_events
WHERE page = 'NextSong'`

// InsertTableQueries returns the five transforms in pipeline order: the
// fact table first, then users, songs, artists and time.
func InsertTableQueries() []Statement {
	return []Statement{
		{Name: "songplay_table_insert", Table: "songplays", SQL: songplayTableInsert},
		{Name: "user_table_insert", Table: "users", SQL: userTableInsert},
		{Name: "song_table_insert", Table: "songs", SQL: songTableInsert},
		{Name: "artist_table_insert", Table: "artists", SQL: artistTableInsert},
		{Name: "time_table_insert", Table: "time", SQL: timeTableInsert},
	}
}
