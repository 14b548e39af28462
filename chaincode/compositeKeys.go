package chaincode

import "fmt"

func createAuthorizationCompositeKey(ledger Ledger, patientID, providerID string) (string, error) {
	compositeKey, err := ledger.CreateCompositeKey("Authorizations", []string{"patientID", patientID, "providerID", providerID})
	if err != nil {
		return "", fmt.Errorf("failed to create composite key: %v", err)
	}
	return compositeKey, nil
}

func createAuditLogCompositeKey(ledger Ledger, patientID string) (string, error) {
	compositeKey, err := ledger.CreateCompositeKey("AuditLogs", []string{"patientID", patientID})
	if err != nil {
		return "", fmt.Errorf("failed to create composite key: %v", err)
	}
	return compositeKey, nil
}
