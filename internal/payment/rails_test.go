package payment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

func TestDefaultRailsAreValid(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Len(t, r.List(), 3)

	btc, err := r.Get("btc")
	require.NoError(t, err)
	assert.Equal(t, KindCrypto, btc.Kind)

	_, err = r.Get("cash")
	assert.True(t, apperror.IsValidation(err))
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rails.yaml")
	content := `rails:
  - id: eth
    kind: crypto
    title: Ethereum
    network: ethereum
    address: "0x52908400098527886E0F7030069857D2E4169EE7"
  - id: wire
    kind: manual
    title: Wire
    contact: finance@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	rails := r.List()
	require.Len(t, rails, 2)
	assert.Equal(t, "eth", rails[0].ID)
	assert.Equal(t, "finance@example.com", rails[1].Contact)
}

func TestNewRegistryRejectsBadRails(t *testing.T) {
	cases := map[string][]Rail{
		"пусто":            nil,
		"без id":           {{Kind: KindManual, Contact: "x"}},
		"дубликат":         {{ID: "a", Kind: KindManual, Contact: "x"}, {ID: "a", Kind: KindManual, Contact: "y"}},
		"плохой btc":       {{ID: "btc", Kind: KindCrypto, Network: NetworkBitcoin, Address: "not-an-address"}},
		"btc другой сети":  {{ID: "btc", Kind: KindCrypto, Network: NetworkBitcoin, Address: "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn"}},
		"плохой eth":       {{ID: "eth", Kind: KindCrypto, Network: NetworkEthereum, Address: "0x123"}},
		"неизвестная сеть": {{ID: "x", Kind: KindCrypto, Network: "dogecoin", Address: "D"}},
		"ручной без связи": {{ID: "m", Kind: KindManual}},
		"неизвестный тип":  {{ID: "m", Kind: "cheque", Contact: "x"}},
	}
	for name, rails := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(rails)
			assert.Error(t, err)
		})
	}
}

func TestValidateReference(t *testing.T) {
	btc := Rail{ID: "btc", Kind: KindCrypto, Network: NetworkBitcoin}
	eth := Rail{ID: "eth", Kind: KindCrypto, Network: NetworkEthereum}
	manual := Rail{ID: "bank", Kind: KindManual, Contact: "x"}

	txid := "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"
	got, err := ValidateReference(btc, "  "+txid+" ")
	require.NoError(t, err)
	assert.Equal(t, txid, got)

	_, err = ValidateReference(btc, "abc")
	assert.True(t, apperror.IsValidation(err))

	ethHash := "0x88df016429689c079f3b2f6ad39fa052532c56795b733da78a91ebe6a713944b"
	got, err = ValidateReference(eth, strings.ToUpper(ethHash[2:]))
	assert.Error(t, err, "без префикса 0x")
	got, err = ValidateReference(eth, ethHash)
	require.NoError(t, err)
	assert.Equal(t, ethHash, got)

	got, err = ValidateReference(manual, "PP-12345")
	require.NoError(t, err)
	assert.Equal(t, "PP-12345", got)

	_, err = ValidateReference(manual, "   ")
	assert.True(t, apperror.IsValidation(err))
}
