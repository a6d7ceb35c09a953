// Package payment описывает способы оплаты и проверку платёжных реквизитов.
package payment

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Kind string

const (
	KindCrypto Kind = "crypto"
	KindManual Kind = "manual"
)

const (
	NetworkBitcoin        = "bitcoin"
	NetworkBitcoinTestnet = "bitcoin-testnet"
	NetworkEthereum       = "ethereum"
)

// Rail - способ оплаты, который видит клиент.
type Rail struct {
	ID      string `yaml:"id" json:"id"`
	Kind    Kind   `yaml:"kind" json:"kind"`
	Title   string `yaml:"title" json:"title"`
	Network string `yaml:"network,omitempty" json:"network,omitempty"`
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	Contact string `yaml:"contact,omitempty" json:"contact,omitempty"`
	Details string `yaml:"details,omitempty" json:"details,omitempty"`
}

type Registry struct {
	rails []Rail
	byID  map[string]Rail
}

type file struct {
	Rails []Rail `yaml:"rails"`
}

// DefaultRails - реквизиты по умолчанию, если файл не задан.
func DefaultRails() []Rail {
	return []Rail{
		{
			ID:      "btc",
			Kind:    KindCrypto,
			Title:   "Bitcoin",
			Network: NetworkBitcoin,
			Address: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		},
		{
			ID:      "bank_transfer",
			Kind:    KindManual,
			Title:   "Банковский перевод",
			Contact: "billing@paperdesk.example",
			Details: "Укажите номер заказа в назначении платежа",
		},
		{
			ID:      "paypal",
			Kind:    KindManual,
			Title:   "PayPal",
			Contact: "payments@paperdesk.example",
		},
	}
}

// Load читает реквизиты из YAML; пустой путь означает реквизиты по умолчанию.
func Load(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(DefaultRails())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение файла реквизитов: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("разбор файла реквизитов: %w", err)
	}
	return NewRegistry(f.Rails)
}

// NewRegistry проверяет реквизиты: адреса криптокошельков должны соответствовать сети.
func NewRegistry(rails []Rail) (*Registry, error) {
	if len(rails) == 0 {
		return nil, errors.New("не задано ни одного способа оплаты")
	}
	r := &Registry{byID: make(map[string]Rail, len(rails))}
	for _, rail := range rails {
		rail.ID = strings.TrimSpace(rail.ID)
		if rail.ID == "" {
			return nil, errors.New("у способа оплаты нет id")
		}
		if _, dup := r.byID[rail.ID]; dup {
			return nil, fmt.Errorf("способ оплаты %q указан дважды", rail.ID)
		}
		switch rail.Kind {
		case KindCrypto:
			if err := ValidateAddress(rail.Network, rail.Address); err != nil {
				return nil, fmt.Errorf("способ оплаты %q: %w", rail.ID, err)
			}
		case KindManual:
			if strings.TrimSpace(rail.Contact) == "" {
				return nil, fmt.Errorf("способ оплаты %q: нужен контакт", rail.ID)
			}
		default:
			return nil, fmt.Errorf("способ оплаты %q: неизвестный тип %q", rail.ID, rail.Kind)
		}
		r.rails = append(r.rails, rail)
		r.byID[rail.ID] = rail
	}
	return r, nil
}

func (r *Registry) List() []Rail {
	return append([]Rail(nil), r.rails...)
}

func (r *Registry) Get(id string) (Rail, error) {
	rail, ok := r.byID[id]
	if !ok {
		return Rail{}, apperror.Validation("неизвестный способ оплаты")
	}
	return rail, nil
}

// ValidateAddress проверяет адрес получателя для сети.
func ValidateAddress(network, address string) error {
	switch network {
	case NetworkBitcoin, NetworkBitcoinTestnet:
		params := &chaincfg.MainNetParams
		if network == NetworkBitcoinTestnet {
			params = &chaincfg.TestNet3Params
		}
		addr, err := btcutil.DecodeAddress(address, params)
		if err != nil {
			return fmt.Errorf("некорректный bitcoin-адрес: %w", err)
		}
		if !addr.IsForNet(params) {
			return errors.New("bitcoin-адрес относится к другой сети")
		}
		return nil
	case NetworkEthereum:
		if !common.IsHexAddress(address) {
			return errors.New("некорректный ethereum-адрес")
		}
		return nil
	default:
		return fmt.Errorf("неизвестная сеть %q", network)
	}
}

// ValidateReference проверяет, что клиент прислал правдоподобную ссылку на платёж.
// Для криптовалют это хеш транзакции, для ручных способов - непустой номер перевода.
func ValidateReference(rail Rail, reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", apperror.Validation("укажите номер платежа или хеш транзакции")
	}
	if len(reference) > 200 {
		return "", apperror.Validation("слишком длинный номер платежа")
	}
	if rail.Kind != KindCrypto {
		return reference, nil
	}

	switch rail.Network {
	case NetworkEthereum:
		raw, ok := strings.CutPrefix(strings.ToLower(reference), "0x")
		if !ok || len(raw) != 2*common.HashLength {
			return "", apperror.Validation("хеш транзакции ethereum должен быть 0x и 64 hex-символа")
		}
		if _, err := hex.DecodeString(raw); err != nil {
			return "", apperror.Validation("хеш транзакции ethereum должен быть 0x и 64 hex-символа")
		}
		return common.HexToHash(reference).Hex(), nil
	default:
		h, err := chainhash.NewHashFromStr(reference)
		if err != nil || len(reference) != chainhash.MaxHashStringSize {
			return "", apperror.Validation("некорректный хеш bitcoin-транзакции")
		}
		return h.String(), nil
	}
}
