package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"challenge_server/internal/domain"
	"challenge_server/internal/usecase"
)

const (
	defaultPageSize = 100
	maxPages        = 50
)

// StrapiClient reads challenges and stages and manages rewards through the
// backend CMS REST API.
type StrapiClient struct {
	client *resty.Client
}

type strapiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  strapiMeta      `json:"meta"`
	Error *strapiError    `json:"error,omitempty"`
}

type strapiMeta struct {
	Pagination struct {
		Page      int `json:"page"`
		PageSize  int `json:"pageSize"`
		PageCount int `json:"pageCount"`
		Total     int `json:"total"`
	} `json:"pagination"`
}

type strapiError struct {
	Status  int    `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type rewardDTO struct {
	ID                int64     `json:"id"`
	DocumentID        string    `json:"documentId"`
	Name              string    `json:"name"`
	Percentage        float64   `json:"percentage"`
	Probability       float64   `json:"probability"`
	Duration          int       `json:"duration"`
	UsageCount        int       `json:"usageCount"`
	ProductVariations []int64   `json:"productVariations"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func NewStrapiClient(baseURL, token string, timeout time.Duration, opts ...func(*resty.Client)) (*StrapiClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if token != "" {
		client.SetAuthToken(token)
	}

	for _, opt := range opts {
		opt(client)
	}

	return &StrapiClient{client: client}, nil
}

func (c *StrapiClient) GetChallenge(ctx context.Context, documentID string) (domain.Challenge, error) {
	var env strapiEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", documentID).
		SetQueryParam("populate", "broker_account").
		SetResult(&env).
		Get("/api/challenges/{id}")
	if err := checkResponse("get challenge", resp, err); err != nil {
		return domain.Challenge{}, err
	}

	var data any
	if err := json.Unmarshal(env.Data, &data); err != nil || data == nil {
		return domain.Challenge{}, fmt.Errorf("get challenge: %w", domain.ErrNotFound)
	}
	return decodeChallenge(data)
}

// ListChallenges returns every matching challenge. A positive query.Limit
// fetches a single page of that size instead of following pagination.
func (c *StrapiClient) ListChallenges(ctx context.Context, query domain.ChallengeQuery) ([]domain.Challenge, error) {
	params := url.Values{}
	params.Set("populate", "broker_account")
	pageSize := query.Limit
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	params.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	if query.ParentID != "" {
		params.Set("filters[parentId][$eq]", query.ParentID)
	}
	for i, result := range query.Results {
		params.Set(fmt.Sprintf("filters[result][$in][%d]", i), string(result))
	}

	challenges := []domain.Challenge{}
	err := c.eachPage(ctx, "list challenges", "/api/challenges", params, query.Limit <= 0, func(data json.RawMessage) error {
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode challenges: %w", err)
		}
		for _, item := range items {
			challenge, err := decodeChallenge(item)
			if err != nil {
				// Skip malformed records while allowing the rest to be processed.
				continue
			}
			challenges = append(challenges, challenge)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// eachPage requests path page by page, handing each data array to fn. With
// all unset only the first page is read.
func (c *StrapiClient) eachPage(ctx context.Context, op, path string, params url.Values, all bool, fn func(json.RawMessage) error) error {
	for page := 1; page <= maxPages; page++ {
		pageParams := url.Values{}
		for k, v := range params {
			pageParams[k] = v
		}
		pageParams.Set("pagination[page]", strconv.Itoa(page))

		var env strapiEnvelope
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(pageParams).
			SetResult(&env).
			Get(path)
		if err := checkResponse(op, resp, err); err != nil {
			return err
		}
		if err := fn(env.Data); err != nil {
			return err
		}
		if !all || page >= env.Meta.Pagination.PageCount {
			return nil
		}
	}
	return fmt.Errorf("%s: more than %d pages", op, maxPages)
}

// ListStages returns the stages of the program relation the challenge belongs to.
func (c *StrapiClient) ListStages(ctx context.Context, challengeDocumentID string) ([]domain.Stage, error) {
	var env strapiEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("filters[challenges][documentId][$eq]", challengeDocumentID).
		SetQueryParam("populate", "challenge_stages").
		SetResult(&env).
		Get("/api/challenge-relations")
	if err := checkResponse("list stages", resp, err); err != nil {
		return nil, err
	}

	var relations []any
	if err := json.Unmarshal(env.Data, &relations); err != nil {
		return nil, fmt.Errorf("decode challenge relations: %w", err)
	}
	if len(relations) == 0 {
		return nil, nil
	}

	relation := flatten(relations[0])
	if relation == nil {
		return nil, fmt.Errorf("unexpected challenge relation payload %T", relations[0])
	}
	var items []any
	switch raw := relation["challenge_stages"].(type) {
	case []any:
		items = raw
	case map[string]any:
		// v4 wraps relations as {"data": [...]}.
		items, _ = raw["data"].([]any)
	}
	stages := make([]any, 0, len(items))
	for _, item := range items {
		if m := flatten(item); m != nil {
			stages = append(stages, m)
		}
	}
	return usecase.DecodeStages(stages), nil
}

func (c *StrapiClient) ListRewards(ctx context.Context) ([]domain.Reward, error) {
	params := url.Values{}
	params.Set("pagination[pageSize]", strconv.Itoa(defaultPageSize))
	params.Set("sort", "name:asc")

	rewards := []domain.Reward{}
	err := c.eachPage(ctx, "list rewards", "/api/rewards", params, true, func(data json.RawMessage) error {
		var items []rewardDTO
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode rewards: %w", err)
		}
		for _, item := range items {
			rewards = append(rewards, item.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

func (c *StrapiClient) GetReward(ctx context.Context, documentID string) (domain.Reward, error) {
	var env strapiEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", documentID).
		SetResult(&env).
		Get("/api/rewards/{id}")
	if err := checkResponse("get reward", resp, err); err != nil {
		return domain.Reward{}, err
	}
	return decodeReward(env.Data)
}

func (c *StrapiClient) CreateReward(ctx context.Context, input domain.RewardInput) (domain.Reward, error) {
	var env strapiEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"data": input}).
		SetResult(&env).
		Post("/api/rewards")
	if err := checkResponse("create reward", resp, err); err != nil {
		return domain.Reward{}, err
	}
	return decodeReward(env.Data)
}

func (c *StrapiClient) UpdateReward(ctx context.Context, documentID string, input domain.RewardInput) (domain.Reward, error) {
	var env strapiEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", documentID).
		SetBody(map[string]any{"data": input}).
		SetResult(&env).
		Put("/api/rewards/{id}")
	if err := checkResponse("update reward", resp, err); err != nil {
		return domain.Reward{}, err
	}
	return decodeReward(env.Data)
}

func (c *StrapiClient) DeleteReward(ctx context.Context, documentID string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", documentID).
		Delete("/api/rewards/{id}")
	return checkResponse("delete reward", resp, err)
}

func decodeReward(data json.RawMessage) (domain.Reward, error) {
	var dto rewardDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domain.Reward{}, fmt.Errorf("decode reward: %w", err)
	}
	return dto.toDomain(), nil
}

func (d rewardDTO) toDomain() domain.Reward {
	return domain.Reward{
		ID:                d.ID,
		DocumentID:        d.DocumentID,
		Name:              d.Name,
		Percentage:        d.Percentage,
		Probability:       d.Probability,
		Duration:          d.Duration,
		UsageCount:        d.UsageCount,
		ProductVariations: d.ProductVariations,
		UpdatedAt:         d.UpdatedAt,
	}
}

// checkResponse maps transport errors and non-2xx statuses to errors; 404
// wraps domain.ErrNotFound.
func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case resp.StatusCode() >= 400:
		return fmt.Errorf("%s: upstream responded with status %d", op, resp.StatusCode())
	}
	return nil
}
