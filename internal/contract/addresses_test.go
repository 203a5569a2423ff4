package contract

import (
	"errors"
	"strings"
	"testing"

	"github.com/prism-press/prism/internal/domain"
)

const (
	addrOpenCampus   = "0x00000000000000000000000000000000000000Aa"
	addrLineaSepolia = "0x00000000000000000000000000000000000000bB"
)

func TestAddressBookResolvesKnownChains(t *testing.T) {
	book, err := NewAddressBook(map[uint64]string{
		656476: addrOpenCampus,
		59141:  addrLineaSepolia,
	})
	if err != nil {
		t.Fatalf("NewAddressBook: %v", err)
	}

	got, err := book.Resolve(656476)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.EqualFold(got.Hex(), addrOpenCampus) {
		t.Fatalf("resolved wrong address: %s", got.Hex())
	}
}

func TestAddressBookFailsLoudlyOnUnknownChain(t *testing.T) {
	book, err := NewAddressBook(map[uint64]string{656476: addrOpenCampus})
	if err != nil {
		t.Fatalf("NewAddressBook: %v", err)
	}

	_, err = book.Resolve(1)
	if err == nil {
		t.Fatalf("expected error for unsupported chain")
	}
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestAddressBookRejectsInvalidAddress(t *testing.T) {
	_, err := NewAddressBook(map[uint64]string{1: "not-an-address"})
	if err == nil {
		t.Fatalf("expected error for invalid address")
	}
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestAddressBookRejectsEmptyTable(t *testing.T) {
	if _, err := NewAddressBook(nil); err == nil {
		t.Fatalf("expected error for empty address table")
	}
}
