package main

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"os"
	"strings"

	"github.com/blockforge/forkd/domain/chainconfig"
	"github.com/blockforge/forkd/domain/consensus/model/externalapi"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// accountJSON is an account as written in genesis and expected-state
// files. Numbers are decimal or 0x-prefixed hex strings.
type accountJSON struct {
	Balance string            `json:"balance"`
	Nonce   uint64            `json:"nonce"`
	Code    string            `json:"code"`
	Storage map[string]string `json:"storage"`
}

type genesisJSON struct {
	Coinbase   string                 `json:"coinbase"`
	Difficulty string                 `json:"difficulty"`
	GasLimit   uint64                 `json:"gasLimit"`
	Timestamp  uint64                 `json:"timestamp"`
	ExtraData  string                 `json:"extraData"`
	Accounts   map[string]accountJSON `json:"accounts"`
}

func readJSON(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	err = decoder.Decode(v)
	if err != nil {
		return errors.Wrapf(err, "error decoding %s", path)
	}
	return nil
}

// loadGenesis reads a genesis file. The commitments of the genesis header
// are computed from its accounts.
func loadGenesis(path string) (*externalapi.Genesis, error) {
	var fixture genesisJSON
	err := readJSON(path, &fixture)
	if err != nil {
		return nil, err
	}

	header := &externalapi.DomainBlockHeader{
		ParentHash: *externalapi.NewZeroHash(),
		GasLimit:   fixture.GasLimit,
		Timestamp:  fixture.Timestamp,
	}
	header.Difficulty, err = parseBigInt(fixture.Difficulty)
	if err != nil {
		return nil, errors.Wrap(err, "genesis difficulty")
	}
	if fixture.Coinbase != "" {
		header.Coinbase, err = externalapi.NewDomainAddressFromString(fixture.Coinbase)
		if err != nil {
			return nil, errors.Wrap(err, "genesis coinbase")
		}
	}
	header.ExtraData, err = parseHexBytes(fixture.ExtraData)
	if err != nil {
		return nil, errors.Wrap(err, "genesis extra data")
	}

	accounts, err := parseAccounts(fixture.Accounts)
	if err != nil {
		return nil, err
	}
	return chainconfig.NewGenesis(header, accounts), nil
}

// loadExpectedState reads an expected-state file: a JSON object mapping
// addresses to accounts
func loadExpectedState(path string) (map[externalapi.DomainAddress]*externalapi.Account, error) {
	var fixture map[string]accountJSON
	err := readJSON(path, &fixture)
	if err != nil {
		return nil, err
	}
	return parseAccounts(fixture)
}

func parseAccounts(fixture map[string]accountJSON) (map[externalapi.DomainAddress]*externalapi.Account, error) {
	accounts := make(map[externalapi.DomainAddress]*externalapi.Account, len(fixture))
	for addressString, accountFixture := range fixture {
		address, err := externalapi.NewDomainAddressFromString(addressString)
		if err != nil {
			return nil, errors.Wrapf(err, "account %s", addressString)
		}
		account, err := parseAccount(&accountFixture)
		if err != nil {
			return nil, errors.Wrapf(err, "account %s", addressString)
		}
		accounts[address] = account
	}
	return accounts, nil
}

func parseAccount(fixture *accountJSON) (*externalapi.Account, error) {
	account := externalapi.NewAccount()
	account.Nonce = fixture.Nonce

	if fixture.Balance != "" {
		balance, err := parseBigInt(fixture.Balance)
		if err != nil {
			return nil, errors.Wrap(err, "balance")
		}
		account.Balance = balance
	}

	code, err := parseHexBytes(fixture.Code)
	if err != nil {
		return nil, errors.Wrap(err, "code")
	}
	if len(code) > 0 {
		account.Code = code
	}

	for keyString, valueString := range fixture.Storage {
		key, err := parseUint256(keyString)
		if err != nil {
			return nil, errors.Wrapf(err, "storage key %s", keyString)
		}
		value, err := parseUint256(valueString)
		if err != nil {
			return nil, errors.Wrapf(err, "storage value of %s", keyString)
		}
		if !value.IsZero() {
			account.Storage[*key] = *value
		}
	}
	return account, nil
}

func parseBigInt(s string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(s, 0)
	if !ok || value.Sign() < 0 {
		return nil, errors.Errorf("%q is not a non-negative integer", s)
	}
	return value, nil
}

func parseUint256(s string) (*uint256.Int, error) {
	bigValue, err := parseBigInt(s)
	if err != nil {
		return nil, err
	}
	value, overflow := uint256.FromBig(bigValue)
	if overflow {
		return nil, errors.Errorf("%s does not fit in 256 bits", s)
	}
	return value, nil
}

func parseHexBytes(s string) ([]byte, error) {
	decoded, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return decoded, nil
}
