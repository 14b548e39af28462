package chaincode

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Clock supplies the host timestamp of the current invocation.
type Clock func() (int64, error)

// RecordHandle references the opaque medical record an authorized provider
// just read, together with the audit facts of that read. The record content
// itself lives outside this contract.
type RecordHandle struct {
	PatientID   string `json:"patientID"`
	Accessor    string `json:"accessor"`
	Timestamp   int64  `json:"timestamp"`
	AccessCount uint64 `json:"accessCount"`
}

// AccessControlEngine validates each operation against the authorization
// state and keeps the audit log in step. One engine is built per invocation
// and holds no state of its own; atomicity comes from the host transaction.
type AccessControlEngine struct {
	auth              Authenticator
	authorizations    *AuthorizationStore
	auditLogs         *AuditLogStore
	now               Clock
	idempotentToggles bool
	log               *logrus.Entry
}

func NewAccessControlEngine(auth Authenticator, authorizations *AuthorizationStore, auditLogs *AuditLogStore, now Clock, idempotentToggles bool) *AccessControlEngine {
	return &AccessControlEngine{
		auth:              auth,
		authorizations:    authorizations,
		auditLogs:         auditLogs,
		now:               now,
		idempotentToggles: idempotentToggles,
		log:               logrus.WithField("component", "access-control"),
	}
}

// GrantAccess records that provider may read patient's records. The patient
// must be the authenticated caller.
func (e *AccessControlEngine) GrantAccess(patientID, providerID string) error {
	if err := e.auth.RequireIdentity(patientID); err != nil {
		return err
	}

	authorized, err := e.authorizations.IsAuthorized(patientID, providerID)
	if err != nil {
		return err
	}
	if authorized {
		if e.idempotentToggles {
			e.log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Info("provider already has access")
			return nil
		}
		return fmt.Errorf("%w: patient %s, provider %s", ErrDuplicateGrant, patientID, providerID)
	}

	if err := e.authorizations.Set(patientID, providerID, true); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Info("access granted")
	return nil
}

// RevokeAccess withdraws a provider's access. The patient must be the
// authenticated caller.
func (e *AccessControlEngine) RevokeAccess(patientID, providerID string) error {
	if err := e.auth.RequireIdentity(patientID); err != nil {
		return err
	}

	authorized, err := e.authorizations.IsAuthorized(patientID, providerID)
	if err != nil {
		return err
	}
	if !authorized {
		if e.idempotentToggles {
			e.log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Info("provider has no access to revoke")
			return nil
		}
		return fmt.Errorf("%w: patient %s, provider %s", ErrNoSuchGrant, patientID, providerID)
	}

	if err := e.authorizations.Set(patientID, providerID, false); err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Info("access revoked")
	return nil
}

// AccessRecords reads a patient's records on behalf of an authorized
// provider and overwrites the patient's audit slot with this access. The
// provider must be the authenticated caller.
func (e *AccessControlEngine) AccessRecords(patientID, providerID string) (*RecordHandle, error) {
	if err := e.auth.RequireIdentity(providerID); err != nil {
		return nil, err
	}

	authorized, err := e.authorizations.IsAuthorized(patientID, providerID)
	if err != nil {
		return nil, err
	}
	if !authorized {
		e.log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Warn("unauthorized access attempt")
		return nil, fmt.Errorf("%w: patient %s, provider %s", ErrUnauthorized, patientID, providerID)
	}

	timestamp, err := e.now()
	if err != nil {
		return nil, fmt.Errorf("failed to read invocation timestamp: %v", err)
	}

	latest, err := e.auditLogs.GetLatest(patientID)
	if err != nil {
		return nil, err
	}
	var accessCount uint64 = 1
	if latest != nil {
		accessCount = latest.AccessCount + 1
	}

	record := AccessLogRecord{
		Accessor:    providerID,
		Timestamp:   timestamp,
		AccessCount: accessCount,
	}
	if err := e.auditLogs.PutLatest(patientID, record); err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID, "accessCount": accessCount}).Info("records accessed")

	return &RecordHandle{
		PatientID:   patientID,
		Accessor:    providerID,
		Timestamp:   timestamp,
		AccessCount: accessCount,
	}, nil
}

// ViewAuditTrail returns the most recent access for patient, or nil when the
// records have never been read. Anyone may call it.
func (e *AccessControlEngine) ViewAuditTrail(patientID string) (*AccessLogRecord, error) {
	return e.auditLogs.GetLatest(patientID)
}
