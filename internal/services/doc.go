// Package services implements the video search backends that resolve a song query to a YouTube video ID.
//
// # Service Interface
//
// Every backend implements [Service.SearchVideo]. A miss wraps [shared.ErrNotFound]; the session
// adapters turn that into an empty ID so the retry loop treats it as "not found" rather than an error.
//
// # Scrape Strategy
//
// [ScrapeSession] requests the public results page (GET /results?search_query=...) with the slot's
// user agent and viewport hints, then runs an ordered list of [Extractor]s over the body:
//
//  1. [InitialDataExtractor] : first videoRenderer inside the embedded ytInitialData document
//  2. [VideoIDExtractor] : first "videoId":"..." pair anywhere in the page
//  3. [WatchLinkExtractor] : first /watch?v= link
//
// # Proxy Strategy
//
// [YouTubeService] communicates with the FastAPI proxy server (music/) wrapping ytmusicapi.
// The auth_file path, when set, is sent via X-Auth-File header on each request.
// [ProxySession] checks GET /health when a slot opens and searches with GET /api/search?filter=songs.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotFound] : no result for the query
//   - [shared.ErrServiceUnavailable] : rate limited, server error or proxy down
//   - [shared.ErrAPIRequest] : HTTP request failed
//
// [NewSessionFactory] picks the strategy from [shared.ResolverConfig].
package services
