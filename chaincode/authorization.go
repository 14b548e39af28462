package chaincode

import "fmt"

// authorizationMarker is the value stored under an AuthorizationEntry key.
// Existence of the key is the grant; the value carries no payload.
var authorizationMarker = []byte{0x01}

// AuthorizationStore is the durable membership set of (patient, provider)
// pairs that currently hold access.
type AuthorizationStore struct {
	ledger Ledger
}

func NewAuthorizationStore(ledger Ledger) *AuthorizationStore {
	return &AuthorizationStore{ledger: ledger}
}

func (s *AuthorizationStore) IsAuthorized(patientID, providerID string) (bool, error) {
	key, err := createAuthorizationCompositeKey(s.ledger, patientID, providerID)
	if err != nil {
		return false, err
	}

	entryBytes, err := s.ledger.GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to read authorization entry: %v", err)
	}

	return entryBytes != nil, nil
}

// Set makes the pair present or absent. Writing an already-present pair or
// deleting an absent one is the engine's concern, not the store's.
func (s *AuthorizationStore) Set(patientID, providerID string, present bool) error {
	key, err := createAuthorizationCompositeKey(s.ledger, patientID, providerID)
	if err != nil {
		return err
	}

	if !present {
		if err := s.ledger.DelState(key); err != nil {
			return fmt.Errorf("failed to delete authorization entry: %v", err)
		}
		return nil
	}

	if err := s.ledger.PutState(key, authorizationMarker); err != nil {
		return fmt.Errorf("failed to store authorization entry: %v", err)
	}

	return nil
}
