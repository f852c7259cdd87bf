package sevdesk

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"
)

type checkAccountsEnvelope struct {
	Objects []CheckAccount `json:"objects"`
}

type accountingTypesEnvelope struct {
	Objects []AccountingType `json:"objects"`
}

type contactsEnvelope struct {
	Objects []Contact `json:"objects"`
}

// ListCheckAccounts fetches all check accounts.
func (c *Client) ListCheckAccounts(ctx context.Context) ([]CheckAccount, error) {
	var resp checkAccountsEnvelope
	if err := c.do(ctx, "GET", "CheckAccount", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list check accounts: %w", err)
	}
	return resp.Objects, nil
}

// ListAccountingTypes fetches all booking accounts (SKR numbers).
func (c *Client) ListAccountingTypes(ctx context.Context) ([]AccountingType, error) {
	var resp accountingTypesEnvelope
	if err := c.do(ctx, "GET", "AccountingType", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list accounting types: %w", err)
	}
	return resp.Objects, nil
}

// SearchContacts fetches contacts whose name matches the given query.
func (c *Client) SearchContacts(ctx context.Context, name string) ([]Contact, error) {
	query := url.Values{}
	query.Set("name", name)

	var resp contactsEnvelope
	if err := c.do(ctx, "GET", "Contact", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	return resp.Objects, nil
}

const (
	resolverCacheTTL     = 5 * time.Minute
	resolverCacheCleanup = 10 * time.Minute

	checkAccountsCacheKey   = "checkAccounts"
	accountingTypesCacheKey = "accountingTypes"
)

// Resolver looks up check accounts and booking accounts by their human-facing
// identifiers, caching the listings so repeated lookups during an import don't
// hammer the API.
type Resolver struct {
	client *Client
	cache  *cache.Cache
}

// NewResolver creates a resolver backed by the given client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{
		client: client,
		cache:  cache.New(resolverCacheTTL, resolverCacheCleanup),
	}
}

func (r *Resolver) checkAccounts(ctx context.Context) ([]CheckAccount, error) {
	if cached, found := r.cache.Get(checkAccountsCacheKey); found {
		return cached.([]CheckAccount), nil
	}
	accounts, err := r.client.ListCheckAccounts(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(checkAccountsCacheKey, accounts, cache.DefaultExpiration)
	return accounts, nil
}

// CheckAccountByName resolves a check account by its exact name. Cash
// registers are skipped so a register sharing the name of a bank account
// never shadows it.
func (r *Resolver) CheckAccountByName(ctx context.Context, name string) (*CheckAccount, error) {
	accounts, err := r.checkAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Type == CheckAccountRegister {
			continue
		}
		if accounts[i].Name == name {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("check account %q not found: create it on sevDesk first, e.g. by uploading a dummy CSV", name)
}

// CheckAccountByIBAN resolves a check account by its IBAN or account number.
// Cash registers are skipped.
func (r *Resolver) CheckAccountByIBAN(ctx context.Context, iban string) (*CheckAccount, error) {
	accounts, err := r.checkAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Type == CheckAccountRegister {
			continue
		}
		if accounts[i].IBAN == iban {
			return &accounts[i], nil
		}
	}
	return nil, fmt.Errorf("no check account with IBAN %q found: create it on sevDesk first", iban)
}

// AccountingTypeBySKR resolves a booking account by its SKR number.
func (r *Resolver) AccountingTypeBySKR(ctx context.Context, skr string) (*AccountingType, error) {
	var types []AccountingType
	if cached, found := r.cache.Get(accountingTypesCacheKey); found {
		types = cached.([]AccountingType)
	} else {
		fetched, err := r.client.ListAccountingTypes(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Set(accountingTypesCacheKey, fetched, cache.DefaultExpiration)
		types = fetched
	}

	for i := range types {
		if types[i].AccountingNumber == skr {
			return &types[i], nil
		}
	}
	return nil, fmt.Errorf("booking account with SKR number %q not found", skr)
}
