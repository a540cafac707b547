package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p"
	youtubeWatchURL     = "https://www.youtube.com/watch?v="
)

// Image sizes accepted by [TMDBService.ImageURL].
const (
	PosterSmall   = "w154"
	PosterMedium  = "w342"
	PosterLarge   = "w500"
	BackdropSmall = "w780"
	BackdropLarge = "w1280"
	Original      = "original"
)

// TMDBService implements [MetadataService] for The Movie Database.
type TMDBService struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	region       string
	bearer       bool
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// NewTMDBService creates a TMDB client from cfg.
//
// When cfg.AccessToken is set requests carry it as a bearer token via an oauth2 transport
// layered on client; otherwise cfg.APIKey is sent as the api_key query parameter.
// A nil client uses a default client with a 10 second timeout.
func NewTMDBService(cfg shared.TMDBConfig, client *http.Client) *TMDBService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	s := &TMDBService{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		region:       cfg.Region,
		httpClient:   client,
		limiter:      rate.NewLimiter(rate.Inf, 1),
	}

	if s.baseURL == "" {
		s.baseURL = defaultTMDBBaseURL
	}
	if s.imageBaseURL == "" {
		s.imageBaseURL = defaultTMDBImageURL
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		s.httpClient = oauth2.NewClient(ctx, src)
		s.bearer = true
	}

	return s
}

// Name returns the service name.
func (s *TMDBService) Name() string {
	return "TMDB"
}

type tmdbError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// get performs a rate-limited GET of path and decodes the JSON response into result.
func (s *TMDBService) get(ctx context.Context, path string, params url.Values, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrAPIRequest, err)
	}

	if params == nil {
		params = url.Values{}
	}
	if !s.bearer && s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}
	if s.language != "" && params.Get("language") == "" {
		params.Set("language", s.language)
	}

	reqURL := s.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr tmdbError
		msg := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.StatusMessage != "" {
			msg = apiErr.StatusMessage
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, msg)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, msg)
		case http.StatusServiceUnavailable:
			return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
		default:
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

func (s *TMDBService) listing(ctx context.Context, path string, params url.Values) (*models.MoviePage, error) {
	var result models.MoviePage
	if err := s.get(ctx, path, params, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []models.Movie{}
	}
	return &result, nil
}

func (s *TMDBService) regional(page int) url.Values {
	params := pageParams(page)
	if s.region != "" {
		params.Set("region", s.region)
	}
	return params
}

// Popular calls GET /movie/popular.
func (s *TMDBService) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.listing(ctx, "/movie/popular", s.regional(page))
}

// TopRated calls GET /movie/top_rated.
func (s *TMDBService) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.listing(ctx, "/movie/top_rated", s.regional(page))
}

// NowPlaying calls GET /movie/now_playing.
func (s *TMDBService) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.listing(ctx, "/movie/now_playing", s.regional(page))
}

// Upcoming calls GET /movie/upcoming.
func (s *TMDBService) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	return s.listing(ctx, "/movie/upcoming", s.regional(page))
}

// Trending calls GET /trending/movie/{window}. An empty window means "week".
func (s *TMDBService) Trending(ctx context.Context, window string, page int) (*models.MoviePage, error) {
	switch window {
	case "":
		window = "week"
	case "day", "week":
	default:
		return nil, fmt.Errorf("%w: trending window must be day or week, got %q", shared.ErrInvalidArgument, window)
	}
	return s.listing(ctx, "/trending/movie/"+window, pageParams(page))
}

// ByGenre calls GET /discover/movie sorted by popularity.
func (s *TMDBService) ByGenre(ctx context.Context, genreID, page int) (*models.MoviePage, error) {
	params := pageParams(page)
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")
	return s.listing(ctx, "/discover/movie", params)
}

// Search calls GET /search/movie.
func (s *TMDBService) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", shared.ErrInvalidInput)
	}

	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")
	return s.listing(ctx, "/search/movie", params)
}

// Details calls GET /movie/{id} with credits and videos appended.
func (s *TMDBService) Details(ctx context.Context, movieID int) (*models.MovieDetails, error) {
	var details models.MovieDetails
	params := url.Values{"append_to_response": {"credits,videos"}}
	if err := s.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Credits calls GET /movie/{id}/credits.
func (s *TMDBService) Credits(ctx context.Context, movieID int) (*models.Credits, error) {
	var credits models.Credits
	if err := s.get(ctx, fmt.Sprintf("/movie/%d/credits", movieID), nil, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

// Videos calls GET /movie/{id}/videos.
func (s *TMDBService) Videos(ctx context.Context, movieID int) ([]models.Video, error) {
	var videos models.VideoList
	if err := s.get(ctx, fmt.Sprintf("/movie/%d/videos", movieID), nil, &videos); err != nil {
		return nil, err
	}
	if videos.Results == nil {
		return []models.Video{}, nil
	}
	return videos.Results, nil
}

// Similar calls GET /movie/{id}/similar.
func (s *TMDBService) Similar(ctx context.Context, movieID, page int) (*models.MoviePage, error) {
	return s.listing(ctx, fmt.Sprintf("/movie/%d/similar", movieID), pageParams(page))
}

// Recommendations calls GET /movie/{id}/recommendations.
func (s *TMDBService) Recommendations(ctx context.Context, movieID, page int) (*models.MoviePage, error) {
	return s.listing(ctx, fmt.Sprintf("/movie/%d/recommendations", movieID), pageParams(page))
}

// Genres calls GET /genre/movie/list.
func (s *TMDBService) Genres(ctx context.Context) ([]models.Genre, error) {
	var result struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := s.get(ctx, "/genre/movie/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Genres, nil
}

// ImageURL builds the CDN URL for an image path. An empty path yields "".
func (s *TMDBService) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = PosterLarge
	}
	return s.imageBaseURL + "/" + size + path
}

// TrailerURL picks a YouTube watch URL from videos: the first official trailer, otherwise the
// first YouTube trailer or teaser.
func TrailerURL(videos []models.Video) (string, error) {
	var fallback *models.Video
	for i, v := range videos {
		if v.Site != "YouTube" || v.Key == "" {
			continue
		}
		if v.Type == "Trailer" && v.Official {
			return youtubeWatchURL + v.Key, nil
		}
		if fallback == nil && (v.Type == "Trailer" || v.Type == "Teaser") {
			fallback = &videos[i]
		}
	}

	if fallback != nil {
		return youtubeWatchURL + fallback.Key, nil
	}
	return "", shared.ErrNoTrailer
}

// IsNotFound reports whether err means the requested movie does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrMovieNotFound)
}
