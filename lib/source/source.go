// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package source models the device-and-install identity attached to
// every log record and pushed to the collector's sources endpoint.
//
// The static part comes from a [device.Provider]. The install UUID is
// generated once with google/uuid and kept in the settings store. The
// identifier and custom properties are set by the host application;
// changing either persists it, invalidates the cached JSON, and
// publishes [eventbus.SourceUpdated].
package source

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/birch/lib/device"
	"github.com/bureau-foundation/birch/lib/eventbus"
	"github.com/bureau-foundation/birch/lib/settings"
)

// customPropertyPrefix namespaces custom properties in the snapshot so
// they cannot collide with the fixed keys.
const customPropertyPrefix = "custom_property__"

// Source is safe for concurrent use.
type Source struct {
	uuid     string
	identity device.Identity
	store    settings.Store
	bus      *eventbus.Bus

	mu         sync.RWMutex
	identifier string
	properties map[string]string
	cache      []byte
}

// New builds the source, generating and persisting the install UUID on
// first use. bus may be nil.
func New(identity device.Identity, store settings.Store, bus *eventbus.Bus) (*Source, error) {
	id := store.UUID()
	if id == "" {
		id = uuid.NewString()
		if err := store.SetUUID(id); err != nil {
			return nil, fmt.Errorf("source: persisting install uuid: %w", err)
		}
	}
	return &Source{
		uuid:       id,
		identity:   identity,
		store:      store,
		bus:        bus,
		identifier: store.Identifier(),
		properties: store.CustomProperties(),
	}, nil
}

// UUID returns the install UUID.
func (s *Source) UUID() string { return s.uuid }

// Identity returns the static device identity.
func (s *Source) Identity() device.Identity { return s.identity }

// Identifier returns the host-assigned identifier, "" when unset.
func (s *Source) Identifier() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identifier
}

// SetIdentifier changes the identifier. "" clears it. The in-memory
// value changes even when persisting fails; the error reports the
// persistence failure.
func (s *Source) SetIdentifier(identifier string) error {
	s.mu.Lock()
	s.identifier = identifier
	s.cache = nil
	s.mu.Unlock()

	err := s.store.SetIdentifier(identifier)
	s.publish()
	if err != nil {
		return fmt.Errorf("source: persisting identifier: %w", err)
	}
	return nil
}

// CustomProperties returns a copy of the custom properties.
func (s *Source) CustomProperties() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.properties)
}

// SetCustomProperties replaces the custom properties. nil or empty
// clears them. Persistence behaves as in SetIdentifier.
func (s *Source) SetCustomProperties(properties map[string]string) error {
	cloned := maps.Clone(properties)
	if len(cloned) == 0 {
		cloned = nil
	}

	s.mu.Lock()
	s.properties = cloned
	s.cache = nil
	s.mu.Unlock()

	err := s.store.SetCustomProperties(cloned)
	s.publish()
	if err != nil {
		return fmt.Errorf("source: persisting custom properties: %w", err)
	}
	return nil
}

// JSON returns the serialized snapshot. The result is cached until the
// next mutation and must not be modified.
func (s *Source) JSON() json.RawMessage {
	s.mu.RLock()
	cached := s.cache
	s.mu.RUnlock()
	if cached != nil {
		return cached
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		s.cache = s.renderLocked()
	}
	return s.cache
}

// MarshalJSON implements json.Marshaler.
func (s *Source) MarshalJSON() ([]byte, error) {
	return s.JSON(), nil
}

func (s *Source) renderLocked() []byte {
	fields := map[string]string{
		"uuid":             s.uuid,
		"package_name":     s.identity.PackageName,
		"app_version":      s.identity.AppVersion,
		"app_build_number": s.identity.AppBuildNumber,
		"brand":            s.identity.Brand,
		"manufacturer":     s.identity.Manufacturer,
		"model":            s.identity.Model,
		"os":               s.identity.OS,
		"os_version":       s.identity.OSVersion,
	}
	if s.identifier != "" {
		fields["identifier"] = s.identifier
	}
	for key, value := range s.properties {
		fields[customPropertyPrefix+key] = value
	}

	// A map of strings always marshals.
	data, _ := json.Marshal(fields)
	return data
}

func (s *Source) publish() {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.SourceUpdated{Snapshot: s.JSON()})
}
