package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/codyseavey/pullsheet/internal/metrics"
	"github.com/codyseavey/pullsheet/internal/models"
)

const (
	scryfallDefaultBaseURL = "https://api.scryfall.com"
	scryfallTimeout        = 10 * time.Second
	scryfallUserAgent      = "pullsheet/1.0"
	scryfallMaxAttempts    = 3
	scryfallRetryDelay     = 500 * time.Millisecond
)

// ScryfallService is the client for the external card-data source. All
// calls share one rate limiter; Scryfall asks for at most 10 requests per
// second and the limiter enforces that ceiling regardless of how many
// records need lookups.
type ScryfallService struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewScryfallService() *ScryfallService {
	baseURL := os.Getenv("SCRYFALL_BASE_URL")
	if baseURL == "" {
		baseURL = scryfallDefaultBaseURL
	}
	return &ScryfallService{
		client: &http.Client{
			Timeout: scryfallTimeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

type scryfallSetList struct {
	Data    []scryfallSet `json:"data"`
	HasMore bool          `json:"has_more"`
}

type scryfallSet struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	SetType string `json:"set_type"`
}

type scryfallCard struct {
	Name         string          `json:"name"`
	Set          string          `json:"set"`
	CollectorNum string          `json:"collector_number"`
	Rarity       string          `json:"rarity"`
	TypeLine     string          `json:"type_line"`
	Colors       []string        `json:"colors"`
	ImageURIs    *scryfallImages `json:"image_uris"`
	CardFaces    []scryfallFace  `json:"card_faces"`
}

type scryfallImages struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

type scryfallFace struct {
	TypeLine  string          `json:"type_line"`
	Colors    []string        `json:"colors"`
	ImageURIs *scryfallImages `json:"image_uris"`
}

// CardAttributes is the bundle the resolver needs from one lookup.
type CardAttributes struct {
	Name     string
	Color    models.Color
	Rarity   models.Rarity
	ImageURL string
}

// SetInfo is one entry from the fetch-all-sets operation.
type SetInfo struct {
	Code    string
	Name    string
	SetType string
}

// ListSets fetches every set for the reference-table sync.
func (s *ScryfallService) ListSets(ctx context.Context) ([]SetInfo, error) {
	var body scryfallSetList
	if err := s.getJSON(ctx, s.baseURL+"/sets", &body); err != nil {
		return nil, fmt.Errorf("failed to list scryfall sets: %w", err)
	}
	sets := make([]SetInfo, 0, len(body.Data))
	for _, set := range body.Data {
		sets = append(sets, SetInfo{Code: set.Code, Name: set.Name, SetType: set.SetType})
	}
	return sets, nil
}

// GetCardBySetAndNumber retrieves one printing by set code and collector
// number, the authoritative lookup path. Returns nil, nil on 404.
func (s *ScryfallService) GetCardBySetAndNumber(ctx context.Context, setCode, number string) (*CardAttributes, error) {
	setEscaped := url.PathEscape(strings.ToLower(setCode))
	numberEscaped := url.PathEscape(number)
	reqURL := fmt.Sprintf("%s/cards/%s/%s", s.baseURL, setEscaped, numberEscaped)

	var sc scryfallCard
	if err := s.getJSON(ctx, reqURL, &sc); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card from scryfall: %w", err)
	}
	attrs := convertToAttributes(sc)
	return &attrs, nil
}

// GetCardByFuzzyName looks a card up by approximate name, the fallback path
// when exact identification is unavailable. Returns nil, nil when Scryfall
// cannot settle on a single card.
func (s *ScryfallService) GetCardByFuzzyName(ctx context.Context, name string) (*CardAttributes, error) {
	params := url.Values{}
	params.Set("fuzzy", name)
	reqURL := fmt.Sprintf("%s/cards/named?%s", s.baseURL, params.Encode())

	var sc scryfallCard
	if err := s.getJSON(ctx, reqURL, &sc); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card from scryfall: %w", err)
	}
	attrs := convertToAttributes(sc)
	return &attrs, nil
}

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("scryfall API returned status %d", e.status)
}

func isNotFound(err error) bool {
	se, ok := err.(*httpStatusError)
	return ok && se.status == http.StatusNotFound
}

func isRetryable(err error) bool {
	if se, ok := err.(*httpStatusError); ok {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// Transport errors (timeouts, resets) are retryable.
	return true
}

// getJSON performs one paced GET with bounded retries. Each attempt gets its
// own timeout; the limiter wait happens before every attempt so retries do
// not burst past the rate ceiling.
func (s *ScryfallService) getJSON(ctx context.Context, reqURL string, out any) error {
	var lastErr error
	for attempt := 0; attempt < scryfallMaxAttempts; attempt++ {
		if attempt > 0 {
			delay := scryfallRetryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = s.doGet(ctx, reqURL, out)
		if lastErr == nil {
			return nil
		}
		if isNotFound(lastErr) || !isRetryable(lastErr) {
			return lastErr
		}
		metrics.ScryfallRetriesTotal.Inc()
	}
	return lastErr
}

func (s *ScryfallService) doGet(ctx context.Context, reqURL string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, scryfallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", scryfallUserAgent)

	metrics.ScryfallRequestsTotal.Inc()
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode scryfall response: %w", err)
	}
	return nil
}

// convertToAttributes reduces a Scryfall card to the attribute bundle. For
// double-faced cards the front face decides color and type, since that is
// how the card files in a collection.
func convertToAttributes(sc scryfallCard) CardAttributes {
	typeLine := sc.TypeLine
	colors := sc.Colors
	if len(sc.CardFaces) > 0 {
		front := sc.CardFaces[0]
		if front.TypeLine != "" {
			typeLine = front.TypeLine
		}
		if front.Colors != nil {
			colors = front.Colors
		}
	}

	var imageURL string
	if sc.ImageURIs != nil {
		imageURL = sc.ImageURIs.Normal
	} else if len(sc.CardFaces) > 0 && sc.CardFaces[0].ImageURIs != nil {
		imageURL = sc.CardFaces[0].ImageURIs.Normal
	}

	return CardAttributes{
		Name:     sc.Name,
		Color:    colorCategory(typeLine, colors),
		Rarity:   models.RarityFromScryfall(sc.Rarity),
		ImageURL: imageURL,
	}
}

var colorLetterMap = map[string]models.Color{
	"W": models.ColorWhite,
	"U": models.ColorBlue,
	"B": models.ColorBlack,
	"R": models.ColorRed,
	"G": models.ColorGreen,
}

// colorCategory buckets a card by its front-face colors. Noncreature lands
// go to the Land bucket ahead of the colorless check.
func colorCategory(typeLine string, colors []string) models.Color {
	if strings.Contains(typeLine, "Land") && !strings.Contains(typeLine, "Creature") {
		return models.ColorLand
	}
	switch len(colors) {
	case 0:
		return models.ColorColorless
	case 1:
		if c, ok := colorLetterMap[colors[0]]; ok {
			return c
		}
		return models.ColorColorless
	default:
		return models.ColorMulticolor
	}
}
