package httpclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"challenge_server/internal/domain"
)

// WooCommerceClient lists shop products for the admin reward selector.
type WooCommerceClient struct {
	client *resty.Client
}

type productDTO struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	Price      string  `json:"price"`
	Variations []int64 `json:"variations"`
}

type variationDTO struct {
	ID         int64  `json:"id"`
	SKU        string `json:"sku"`
	Price      string `json:"price"`
	Attributes []struct {
		Name   string `json:"name"`
		Option string `json:"option"`
	} `json:"attributes"`
}

func NewWooCommerceClient(baseURL, key, secret string, timeout time.Duration, opts ...func(*resty.Client)) (*WooCommerceClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetBasicAuth(key, secret).
		SetTimeout(timeout)

	for _, opt := range opts {
		opt(client)
	}

	return &WooCommerceClient{client: client}, nil
}

func (c *WooCommerceClient) ListProducts(ctx context.Context, page, perPage int) (domain.ProductPage, error) {
	var items []productDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("per_page", strconv.Itoa(perPage)).
		SetResult(&items).
		Get("/wp-json/wc/v3/products")
	if err := checkResponse("list products", resp, err); err != nil {
		return domain.ProductPage{}, err
	}

	total, _ := strconv.Atoi(resp.Header().Get("X-WP-Total"))
	totalPages, _ := strconv.Atoi(resp.Header().Get("X-WP-TotalPages"))

	products := make([]domain.Product, len(items))
	for i, item := range items {
		products[i] = domain.Product{
			ID:         item.ID,
			Name:       item.Name,
			SKU:        item.SKU,
			Type:       item.Type,
			Status:     item.Status,
			Price:      item.Price,
			Variations: item.Variations,
		}
	}

	return domain.ProductPage{
		Items:      products,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (c *WooCommerceClient) ListVariations(ctx context.Context, productID int64) ([]domain.ProductVariation, error) {
	var items []variationDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(productID, 10)).
		SetQueryParam("per_page", "100").
		SetResult(&items).
		Get("/wp-json/wc/v3/products/{id}/variations")
	if err := checkResponse("list variations", resp, err); err != nil {
		return nil, err
	}

	variations := make([]domain.ProductVariation, len(items))
	for i, item := range items {
		attrs := make([]domain.VariationAttribute, len(item.Attributes))
		for j, a := range item.Attributes {
			attrs[j] = domain.VariationAttribute{Name: a.Name, Option: a.Option}
		}
		variations[i] = domain.ProductVariation{
			ID:         item.ID,
			ProductID:  productID,
			SKU:        item.SKU,
			Price:      item.Price,
			Attributes: attrs,
		}
	}
	return variations, nil
}
