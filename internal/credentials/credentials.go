// Package credentials manages the API keys used for upstream calls: a
// session overlay for keys typed in at run time, and an opt-in persistent
// store for keys the user asked to remember.
package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
)

// Slot names one stored key.
type Slot string

const (
	SlotWeather Slot = "weather" // OpenWeather
	SlotFlight  Slot = "flight"  // AviationStack
)

// Slots returns every slot in display order.
func Slots() []Slot {
	return []Slot{SlotWeather, SlotFlight}
}

// ParseSlot resolves a slot name, case-insensitively.
func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotWeather:
		return SlotWeather, nil
	case SlotFlight:
		return SlotFlight, nil
	default:
		return "", fmt.Errorf("%w: unknown key slot %q (want weather or flight)", domain.ErrInvalidInput, s)
	}
}

// Provider supplies the key for a slot. A slot with no key yields an error
// wrapping domain.ErrMissingCredential.
type Provider interface {
	Credential(ctx context.Context, slot Slot) (string, error)
}

// Store persists keys across runs.
type Store interface {
	Get(slot Slot) (string, bool, error)
	Set(slot Slot, key string) error
	Remove(slot Slot) error
}

// StaticProvider serves fixed keys, such as the server's environment keys.
type StaticProvider map[Slot]string

// Credential implements Provider.
func (p StaticProvider) Credential(_ context.Context, slot Slot) (string, error) {
	if key := p[slot]; key != "" {
		return key, nil
	}
	return "", missing(slot)
}

func missing(slot Slot) error {
	return fmt.Errorf("%w: no %s API key configured", domain.ErrMissingCredential, slot)
}
