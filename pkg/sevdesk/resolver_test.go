package sevdesk

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*Resolver, *int) {
	t.Helper()
	hits := new(int)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/CheckAccount":
			*hits++
			json.NewEncoder(w).Encode(map[string]any{"objects": []CheckAccount{
				{ID: 1, Name: "Wise (EUR, Business)", Type: CheckAccountOnline, Currency: "EUR", IBAN: "BE71096123456769"},
				{ID: 2, Name: "Girokonto", Type: CheckAccountOnline, Currency: "EUR", IBAN: "DE02120300000000202051"},
				// A register sharing a bank account's name must never win.
				{ID: 3, Name: "Girokonto", Type: CheckAccountRegister, Currency: "EUR"},
			}})
		case "/AccountingType":
			json.NewEncoder(w).Encode(map[string]any{"objects": []AccountingType{
				{ID: 1, AccountingNumber: "8400", Name: "Erlöse"},
				{ID: 2, AccountingNumber: "4980", Name: "Betriebsbedarf"},
			}})
		default:
			http.NotFound(w, r)
		}
	})
	return NewResolver(client), hits
}

func TestCheckAccountByName(t *testing.T) {
	resolver, _ := newTestResolver(t)

	account, err := resolver.CheckAccountByName(context.Background(), "Wise (EUR, Business)")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)

	_, err = resolver.CheckAccountByName(context.Background(), "Sparkonto")
	assert.Error(t, err)
}

func TestCheckAccountByNameSkipsRegisters(t *testing.T) {
	resolver, _ := newTestResolver(t)

	account, err := resolver.CheckAccountByName(context.Background(), "Girokonto")
	require.NoError(t, err)
	assert.Equal(t, int64(2), account.ID)
	assert.Equal(t, CheckAccountOnline, account.Type)
}

func TestCheckAccountByIBAN(t *testing.T) {
	resolver, _ := newTestResolver(t)

	account, err := resolver.CheckAccountByIBAN(context.Background(), "DE02120300000000202051")
	require.NoError(t, err)
	assert.Equal(t, int64(2), account.ID)

	_, err = resolver.CheckAccountByIBAN(context.Background(), "DE00000000000000000000")
	assert.Error(t, err)
}

func TestResolverCachesListings(t *testing.T) {
	resolver, hits := newTestResolver(t)

	for i := 0; i < 5; i++ {
		_, err := resolver.CheckAccountByName(context.Background(), "Girokonto")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, *hits)
}

func TestAccountingTypeBySKR(t *testing.T) {
	resolver, _ := newTestResolver(t)

	skr, err := resolver.AccountingTypeBySKR(context.Background(), "4980")
	require.NoError(t, err)
	assert.Equal(t, int64(2), skr.ID)
	assert.Equal(t, "Betriebsbedarf", skr.Name)

	_, err = resolver.AccountingTypeBySKR(context.Background(), "0000")
	assert.Error(t, err)
}
