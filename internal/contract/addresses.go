package contract

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/prism-press/prism/internal/domain"
)

// AddressBook maps chain ids to deployed Prism contract addresses. The table
// is fixed at construction; lookups are pure.
type AddressBook struct {
	table map[uint64]common.Address
}

// NewAddressBook validates the configured chainID→address table.
func NewAddressBook(entries map[uint64]string) (*AddressBook, error) {
	if len(entries) == 0 {
		return nil, &domain.ConfigurationError{
			Field:  "contract_addresses",
			Reason: "no contract addresses configured",
		}
	}
	table := make(map[uint64]common.Address, len(entries))
	for chainID, raw := range entries {
		if !common.IsHexAddress(raw) {
			return nil, &domain.ConfigurationError{
				Field:  "contract_addresses",
				Reason: fmt.Sprintf("invalid address %q for chain %d", raw, chainID),
			}
		}
		table[chainID] = common.HexToAddress(raw)
	}
	return &AddressBook{table: table}, nil
}

// Resolve returns the contract address deployed on the given chain. Unknown
// chains fail loudly; there is no default.
func (b *AddressBook) Resolve(chainID uint64) (common.Address, error) {
	addr, ok := b.table[chainID]
	if !ok {
		return common.Address{}, &domain.ConfigurationError{
			Field:  "contract_addresses",
			Reason: fmt.Sprintf("no contract address found for chain ID %d (known: %v)", chainID, b.ChainIDs()),
		}
	}
	return addr, nil
}

// ChainIDs lists the configured chain ids in ascending order.
func (b *AddressBook) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(b.table))
	for id := range b.table {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
