package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/seasworth/seasworthai/internal/api"
)

const (
	// DefaultCryptoSymbol is quoted when the caller gives no symbol.
	DefaultCryptoSymbol = "BTC"

	topListLimit   = 10
	quoteCurrency  = "USD"
	priceFailMsg   = "Failed to get crypto price."
	topListFailMsg = "Failed to get crypto top list."
)

type topListResponse struct {
	Data []topListCoin `json:"Data"`
}

type topListCoin struct {
	CoinInfo *struct {
		Name     *string `json:"Name"`
		FullName *string `json:"FullName"`
	} `json:"CoinInfo"`
	RAW *struct {
		USD *struct {
			Price     *float64 `json:"PRICE"`
			MarketCap *float64 `json:"MKTCAP"`
		} `json:"USD"`
	} `json:"RAW"`
}

func (c topListCoin) entry() api.CryptoTopListEntry {
	var e api.CryptoTopListEntry
	if c.CoinInfo != nil {
		e.Name = c.CoinInfo.FullName
		e.Symbol = c.CoinInfo.Name
	}
	if c.RAW != nil && c.RAW.USD != nil {
		e.Price = c.RAW.USD.Price
		e.MarketCap = c.RAW.USD.MarketCap
	}
	return e
}

func (c *Client) cryptoRequest(ctx context.Context, apiKey, endpoint string, query url.Values) (*http.Request, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse crypto endpoint: %w", err)
	}
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create crypto request: %w", err)
	}
	req.Header.Set("authorization", "Apikey "+apiKey)
	return req, nil
}

// NormalizeSymbol uppercases symbol and applies the default.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return DefaultCryptoSymbol
	}
	return symbol
}

// CryptoPrice quotes one symbol in USD. A missing price is reported as
// api.PriceNotAvailable rather than an error.
func (c *Client) CryptoPrice(ctx context.Context, apiKey string, req api.CryptoPriceRequest) (api.CryptoPriceResponse, error) {
	symbol := NormalizeSymbol(req.Symbol)

	httpReq, err := c.cryptoRequest(ctx, apiKey, c.endpoints.CryptoPrice, url.Values{
		"fsym":  {symbol},
		"tsyms": {quoteCurrency},
	})
	if err != nil {
		return api.CryptoPriceResponse{}, api.ErrInternal(err)
	}

	body, err := c.do(httpReq, ServiceCryptoCompare, priceFailMsg)
	if err != nil {
		return api.CryptoPriceResponse{}, err
	}

	var quote map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&quote); err != nil {
		return api.CryptoPriceResponse{}, decodeError(ctx, ServiceCryptoCompare, priceFailMsg, body, err)
	}

	var price any = api.PriceNotAvailable
	if n, ok := quote[quoteCurrency].(json.Number); ok {
		price = n
	}
	return api.CryptoPriceResponse{Symbol: symbol, Price: price}, nil
}

// CryptoTopList returns the top coins by market cap, in upstream order.
func (c *Client) CryptoTopList(ctx context.Context, apiKey string, _ api.CryptoTopListRequest) ([]api.CryptoTopListEntry, error) {
	httpReq, err := c.cryptoRequest(ctx, apiKey, c.endpoints.CryptoTopList, url.Values{
		"limit": {strconv.Itoa(topListLimit)},
		"tsym":  {quoteCurrency},
	})
	if err != nil {
		return nil, api.ErrInternal(err)
	}

	body, err := c.do(httpReq, ServiceCryptoCompare, topListFailMsg)
	if err != nil {
		return nil, err
	}

	var resp topListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, decodeError(ctx, ServiceCryptoCompare, topListFailMsg, body, err)
	}

	entries := make([]api.CryptoTopListEntry, 0, len(resp.Data))
	for _, coin := range resp.Data {
		entries = append(entries, coin.entry())
	}
	return entries, nil
}
