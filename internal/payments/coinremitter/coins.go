package coinremitter

import (
	"regexp"
	"sort"
	"strings"
)

type Coin struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Network       string `json:"network"`
	URIScheme     string `json:"-"`
	Confirmations int    `json:"confirmations_required"`
	hashPattern   *regexp.Regexp
}

var (
	hexHash = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
	evmHash = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
)

var coins = map[string]Coin{
	"BTC":  {Symbol: "BTC", Name: "Bitcoin", Icon: "₿", Network: "Bitcoin", URIScheme: "bitcoin", Confirmations: 3, hashPattern: hexHash},
	"ETH":  {Symbol: "ETH", Name: "Ethereum", Icon: "Ξ", Network: "Ethereum", URIScheme: "ethereum", Confirmations: 6, hashPattern: evmHash},
	"LTC":  {Symbol: "LTC", Name: "Litecoin", Icon: "Ł", Network: "Litecoin", URIScheme: "litecoin", Confirmations: 3, hashPattern: hexHash},
	"DOGE": {Symbol: "DOGE", Name: "Dogecoin", Icon: "Ð", Network: "Dogecoin", URIScheme: "dogecoin", Confirmations: 3, hashPattern: hexHash},
	"USDT": {Symbol: "USDT", Name: "Tether", Icon: "₮", Network: "Ethereum (ERC-20)", URIScheme: "ethereum", Confirmations: 6, hashPattern: evmHash},
}

func LookupCoin(symbol string) (Coin, bool) {
	c, ok := coins[strings.ToUpper(strings.TrimSpace(symbol))]
	return c, ok
}

// KnownCoins sorted, for config validation and error messages.
func KnownCoins() []string {
	out := make([]string, 0, len(coins))
	for k := range coins {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c Coin) ValidHash(h string) bool {
	return c.hashPattern != nil && c.hashPattern.MatchString(h)
}
