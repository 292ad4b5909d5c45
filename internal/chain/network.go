package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// NativeCurrency describes the gas currency of a network.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// AddChainParams is the payload of wallet_addEthereumChain.
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RPCURLs           []string       `json:"rpcUrls"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}

// Network is the single target network payouts are allowed on.
type Network struct {
	Name     string
	ChainID  string // 0x-prefixed lowercase hex, as returned by eth_chainId
	Explorer string
	AddChain AddChainParams
}

// Sepolia returns the default payout network.
func Sepolia() Network {
	return Network{
		Name:     "Sepolia",
		ChainID:  "0xaa36a7",
		Explorer: "https://sepolia.etherscan.io",
		AddChain: AddChainParams{
			ChainID:   "0xaa36a7",
			ChainName: "Sepolia Test Network",
			RPCURLs:   []string{"https://sepolia.infura.io/v3/"},
			NativeCurrency: NativeCurrency{
				Name:     "Sepolia ETH",
				Symbol:   "SEP",
				Decimals: 18,
			},
			BlockExplorerURLs: []string{"https://sepolia.etherscan.io"},
		},
	}
}

// NormalizeChainID converts a chain id in hex or decimal form to 0x-prefixed lowercase hex.
// Wallets disagree on leading zeros and case, so comparisons go through this.
func NormalizeChainID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("empty chain id")
	}

	n := new(big.Int)
	var ok bool
	if strings.HasPrefix(id, "0x") || strings.HasPrefix(id, "0X") {
		_, ok = n.SetString(id[2:], 16)
	} else {
		_, ok = n.SetString(id, 10)
	}
	if !ok || n.Sign() <= 0 {
		return "", fmt.Errorf("invalid chain id %q", id)
	}
	return "0x" + n.Text(16), nil
}

// Matches reports whether a provider-reported chain id is this network.
func (n Network) Matches(chainID string) bool {
	got, err := NormalizeChainID(chainID)
	if err != nil {
		return false
	}
	want, err := NormalizeChainID(n.ChainID)
	if err != nil {
		return false
	}
	return got == want
}

// TxURL returns the explorer link for a transaction hash.
func (n Network) TxURL(hash string) string {
	if n.Explorer == "" || hash == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/tx/" + hash
}
