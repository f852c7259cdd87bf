package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AccountEntry maps a bank account number or IBAN to a currency code. A
// multi-currency account appears once per currency.
type AccountEntry struct {
	Account  string `yaml:"account"`
	Currency string `yaml:"currency"`
}

// NeutralPair enables import of internal currency-exchange rows for one
// source/target currency pair.
type NeutralPair struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// AccountMappingConfig represents the complete account mapping configuration.
type AccountMappingConfig struct {
	Accounts         []AccountEntry `yaml:"accounts"`
	IgnoreCurrencies []string       `yaml:"ignore_currencies"`
	NeutralPairs     []NeutralPair  `yaml:"neutral_pairs"`
}

// AccountMapping routes statement rows to accounts and currencies.
type AccountMapping struct {
	config              AccountMappingConfig
	accountByCurrency   map[string]string
	currenciesByAccount map[string][]string
	ignored             map[string]bool
	neutralAllowed      map[string]bool
}

// LoadAccountMapping creates an AccountMapping from a YAML configuration file.
func LoadAccountMapping(configPath string) (*AccountMapping, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read account mapping file: %w", err)
	}

	var config AccountMappingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	mapping := &AccountMapping{
		config:              config,
		accountByCurrency:   make(map[string]string),
		currenciesByAccount: make(map[string][]string),
		ignored:             make(map[string]bool),
		neutralAllowed:      make(map[string]bool),
	}

	if err := mapping.buildMappingMaps(); err != nil {
		return nil, err
	}

	return mapping, nil
}

// buildMappingMaps builds internal lookup maps from configuration. A currency
// mapped to more than one account is a configuration error: the importer
// could not decide where to route rows of that currency.
func (m *AccountMapping) buildMappingMaps() error {
	for _, entry := range m.config.Accounts {
		if entry.Account == "" || entry.Currency == "" {
			return fmt.Errorf("account mapping entry needs both account and currency, got account=%q currency=%q",
				entry.Account, entry.Currency)
		}
		currency := strings.ToUpper(entry.Currency)

		if _, ok := m.accountByCurrency[currency]; ok {
			return fmt.Errorf("duplicate currency %s in account mapping", currency)
		}
		m.accountByCurrency[currency] = entry.Account
		m.currenciesByAccount[entry.Account] = append(m.currenciesByAccount[entry.Account], currency)
	}

	for _, currency := range m.config.IgnoreCurrencies {
		m.ignored[strings.ToUpper(currency)] = true
	}

	for _, pair := range m.config.NeutralPairs {
		m.neutralAllowed[neutralKey(pair.Source, pair.Target)] = true
	}

	return nil
}

// AccountForCurrency returns the account number handling the given currency.
func (m *AccountMapping) AccountForCurrency(currency string) (string, bool) {
	account, ok := m.accountByCurrency[strings.ToUpper(currency)]
	return account, ok
}

// HasAccount checks if an account number appears in the mapping.
func (m *AccountMapping) HasAccount(account string) bool {
	_, ok := m.currenciesByAccount[account]
	return ok
}

// CurrenciesForAccount returns the currencies configured for an account.
func (m *AccountMapping) CurrenciesForAccount(account string) []string {
	return m.currenciesByAccount[account]
}

// IsIgnoredCurrency checks if rows of the given currency should be skipped.
func (m *AccountMapping) IsIgnoredCurrency(currency string) bool {
	return m.ignored[strings.ToUpper(currency)]
}

// IsNeutralAllowed checks if internal exchange rows between the given source
// and target currencies should be imported.
func (m *AccountMapping) IsNeutralAllowed(source, target string) bool {
	return m.neutralAllowed[neutralKey(source, target)]
}

// LedgerKey builds the dedup ledger key for a currency/account pair. The
// currency qualifies the key because a multi-currency account shares one
// account number across its balances.
func LedgerKey(currency, account string) string {
	return fmt.Sprintf("%s-%s", strings.ToUpper(currency), account)
}

func neutralKey(source, target string) string {
	return fmt.Sprintf("%s->%s", strings.ToUpper(source), strings.ToUpper(target))
}
