// Package models defines the domain types shared across the conversion
// pipeline and their persistence contracts.
//
// Core types:
//   - [Setlist] / [Song] : a parsed setlist.fm setlist, order-preserving
//   - [QueryCandidate] : a ranked search string produced by the query builder
//   - [MatchResult] / [Confidence] : the outcome of matching one song
//   - [PlaylistSpec] : the playlist to create on YouTube
//
// Persistence types implement [Model] and are stored through
// [Repository] implementations in internal/repositories:
//   - [CachedVideo] : a cached search result with a 7-day lifetime
//   - [QuotaEntry] : one recorded YouTube Data API call and its unit cost
package models
