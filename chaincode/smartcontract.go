package chaincode

// medical records access contract.
import (
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// MedicalRecordsContract exposes patient-controlled access authorization and
// audit logging. Patients grant and revoke named providers' permission to
// read their (opaque, off-chain) medical record, and every successful read
// is written to a per-patient audit slot the patient can inspect.
type MedicalRecordsContract struct {
	contractapi.Contract

	// IdempotentToggles relaxes GrantAccess and RevokeAccess to no-ops when
	// the pair is already in the requested state. Strict (abort) by default.
	IdempotentToggles bool
}

// engine wires the stores and the authenticator to the current transaction.
// The peer commits all of the invocation's writes or none of them, so the
// engine never has to clean up after a failure.
func (c *MedicalRecordsContract) engine(ctx contractapi.TransactionContextInterface) *AccessControlEngine {
	stub := ctx.GetStub()
	now := func() (int64, error) {
		timestamp, err := stub.GetTxTimestamp()
		if err != nil {
			return 0, err
		}
		return timestamp.GetSeconds(), nil
	}

	return NewAccessControlEngine(
		NewCertificateAuthenticator(ctx.GetClientIdentity()),
		NewAuthorizationStore(stub),
		NewAuditLogStore(stub),
		now,
		c.IdempotentToggles,
	)
}

// GrantAccess lets a patient authorize a provider to read their records.
func (c *MedicalRecordsContract) GrantAccess(ctx contractapi.TransactionContextInterface, patientID, providerID string) error {
	return c.engine(ctx).GrantAccess(patientID, providerID)
}

// RevokeAccess lets a patient withdraw a provider's authorization.
func (c *MedicalRecordsContract) RevokeAccess(ctx contractapi.TransactionContextInterface, patientID, providerID string) error {
	return c.engine(ctx).RevokeAccess(patientID, providerID)
}

// AccessRecords reads a patient's records as an authorized provider and logs
// the access.
func (c *MedicalRecordsContract) AccessRecords(ctx contractapi.TransactionContextInterface, patientID, providerID string) (*RecordHandle, error) {
	return c.engine(ctx).AccessRecords(patientID, providerID)
}

// ViewAuditTrail returns the most recent access log entry for a patient, or
// nil if the records were never accessed.
func (c *MedicalRecordsContract) ViewAuditTrail(ctx contractapi.TransactionContextInterface, patientID string) (*AccessLogRecord, error) {
	return c.engine(ctx).ViewAuditTrail(patientID)
}
