// package services implements clients for external movie metadata APIs
//
// [TMDBService] talks to The Movie Database v3 API. It authenticates with either a v3
// api_key query parameter or a v4 read access token sent as a bearer token, and throttles
// itself with a token bucket so bulk jobs stay under TMDB's request budget.
package services
