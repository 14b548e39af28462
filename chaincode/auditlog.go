package chaincode

import (
	"encoding/json"
	"fmt"
)

// AccessLogRecord is the most recent successful access to one patient's
// records: who read them, when, and how many reads in total.
type AccessLogRecord struct {
	Accessor    string `json:"accessor"`
	Timestamp   int64  `json:"timestamp"`
	AccessCount uint64 `json:"accessCount"`
}

// AuditLogStore keeps a single slot per patient, overwritten on every
// successful access. The record doubles as the access counter because it is
// never deleted.
type AuditLogStore struct {
	ledger Ledger
}

func NewAuditLogStore(ledger Ledger) *AuditLogStore {
	return &AuditLogStore{ledger: ledger}
}

// GetLatest returns nil when the patient's records have never been accessed.
func (s *AuditLogStore) GetLatest(patientID string) (*AccessLogRecord, error) {
	key, err := createAuditLogCompositeKey(s.ledger, patientID)
	if err != nil {
		return nil, err
	}

	recordBytes, err := s.ledger.GetState(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %v", err)
	}
	if recordBytes == nil {
		return nil, nil
	}

	var record AccessLogRecord
	if err := json.Unmarshal(recordBytes, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit log: %v", err)
	}

	return &record, nil
}

func (s *AuditLogStore) PutLatest(patientID string, record AccessLogRecord) error {
	key, err := createAuditLogCompositeKey(s.ledger, patientID)
	if err != nil {
		return err
	}

	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log: %v", err)
	}

	if err := s.ledger.PutState(key, recordBytes); err != nil {
		return fmt.Errorf("failed to store audit log: %v", err)
	}

	return nil
}
