package chaincode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantThenRevokeTogglesAuthorization(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-1", 100)
	authorizations := NewAuthorizationStore(ledger)

	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))

	authorized, err := authorizations.IsAuthorized("patient-1", "provider-1")
	require.NoError(t, err)
	assert.True(t, authorized)

	require.NoError(t, patient.RevokeAccess("patient-1", "provider-1"))

	authorized, err = authorizations.IsAuthorized("patient-1", "provider-1")
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestDuplicateGrantAborts(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-1", 100)

	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))

	err := patient.GrantAccess("patient-1", "provider-1")
	require.ErrorIs(t, err, ErrDuplicateGrant)

	// The failed call leaves the grant in place.
	authorized, err := NewAuthorizationStore(ledger).IsAuthorized("patient-1", "provider-1")
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestRevokeWithoutGrantAborts(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-1", 100)

	err := patient.RevokeAccess("patient-1", "provider-1")
	require.ErrorIs(t, err, ErrNoSuchGrant)
}

func TestAccessRequiresAuthorization(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-1", 100)
	provider := engineAs(ledger, "provider-1", 200)

	handle, err := provider.AccessRecords("patient-1", "provider-1")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, handle)

	// The denied attempt must not leave an audit record behind.
	record, err := provider.ViewAuditTrail("patient-1")
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))

	handle, err = provider.AccessRecords("patient-1", "provider-1")
	require.NoError(t, err)
	require.NotNil(t, handle)
	assert.Equal(t, "patient-1", handle.PatientID)
	assert.Equal(t, "provider-1", handle.Accessor)
	assert.Equal(t, int64(200), handle.Timestamp)
	assert.Equal(t, uint64(1), handle.AccessCount)
}

func TestAuditLogKeepsOnlyLatestAccess(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-1", 100)

	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))
	require.NoError(t, patient.GrantAccess("patient-1", "provider-2"))

	accesses := []struct {
		provider  string
		timestamp int64
	}{
		{"provider-1", 110},
		{"provider-2", 120},
		{"provider-1", 130},
	}
	for _, access := range accesses {
		provider := engineAs(ledger, access.provider, access.timestamp)
		_, err := provider.AccessRecords("patient-1", access.provider)
		require.NoError(t, err)
	}

	record, err := patient.ViewAuditTrail("patient-1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "provider-1", record.Accessor)
	assert.Equal(t, int64(130), record.Timestamp)
	assert.Equal(t, uint64(3), record.AccessCount)
}

func TestViewAuditTrailAbsentBeforeFirstAccess(t *testing.T) {
	ledger := newMemoryLedger()
	anyone := engineAs(ledger, "someone-else", 100)

	record, err := anyone.ViewAuditTrail("patient-1")
	require.NoError(t, err)
	assert.Nil(t, record)
}

// The end-to-end scenario: grant, access, revoke, denied second access, and
// the audit trail still shows the access from before the revoke.
func TestGrantAccessRevokeScenario(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-P", 1000)
	provider := engineAs(ledger, "provider-Q", 1000)

	require.NoError(t, patient.GrantAccess("patient-P", "provider-Q"))

	handle, err := provider.AccessRecords("patient-P", "provider-Q")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), handle.AccessCount)

	require.NoError(t, patient.RevokeAccess("patient-P", "provider-Q"))

	_, err = provider.AccessRecords("patient-P", "provider-Q")
	require.ErrorIs(t, err, ErrUnauthorized)

	record, err := patient.ViewAuditTrail("patient-P")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "provider-Q", record.Accessor)
	assert.Equal(t, int64(1000), record.Timestamp)
	assert.Equal(t, uint64(1), record.AccessCount)
}

func TestGrantRequiresPatientIdentity(t *testing.T) {
	ledger := newMemoryLedger()
	imposter := engineAs(ledger, "provider-1", 100)

	err := imposter.GrantAccess("patient-1", "provider-1")
	require.ErrorIs(t, err, ErrAuthenticationFailure)

	authorized, err := NewAuthorizationStore(ledger).IsAuthorized("patient-1", "provider-1")
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestRevokeRequiresPatientIdentity(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-1", 100)
	imposter := engineAs(ledger, "provider-1", 100)

	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))

	err := imposter.RevokeAccess("patient-1", "provider-1")
	require.ErrorIs(t, err, ErrAuthenticationFailure)

	authorized, err := NewAuthorizationStore(ledger).IsAuthorized("patient-1", "provider-1")
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestAccessRequiresProviderIdentity(t *testing.T) {
	ledger := newMemoryLedger()
	patient := engineAs(ledger, "patient-1", 100)

	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))

	// The patient cannot perform the access act in the provider's name.
	_, err := patient.AccessRecords("patient-1", "provider-1")
	require.ErrorIs(t, err, ErrAuthenticationFailure)
}

func TestAuditCountersAreScopedPerPatient(t *testing.T) {
	ledger := newMemoryLedger()
	provider := engineAs(ledger, "provider-1", 100)

	for _, patientID := range []string{"patient-1", "patient-2"} {
		patient := engineAs(ledger, patientID, 100)
		require.NoError(t, patient.GrantAccess(patientID, "provider-1"))
	}

	_, err := provider.AccessRecords("patient-1", "provider-1")
	require.NoError(t, err)
	_, err = provider.AccessRecords("patient-1", "provider-1")
	require.NoError(t, err)
	_, err = provider.AccessRecords("patient-2", "provider-1")
	require.NoError(t, err)

	first, err := provider.ViewAuditTrail("patient-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), first.AccessCount)

	second, err := provider.ViewAuditTrail("patient-2")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), second.AccessCount)
}

func TestIdempotentTogglesRelaxGrantAndRevoke(t *testing.T) {
	ledger := newMemoryLedger()
	patient := idempotentEngineAs(ledger, "patient-1", 100)
	authorizations := NewAuthorizationStore(ledger)

	// Revoking before any grant is a no-op instead of an abort.
	require.NoError(t, patient.RevokeAccess("patient-1", "provider-1"))

	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))
	require.NoError(t, patient.GrantAccess("patient-1", "provider-1"))

	authorized, err := authorizations.IsAuthorized("patient-1", "provider-1")
	require.NoError(t, err)
	assert.True(t, authorized)

	require.NoError(t, patient.RevokeAccess("patient-1", "provider-1"))
	require.NoError(t, patient.RevokeAccess("patient-1", "provider-1"))

	authorized, err = authorizations.IsAuthorized("patient-1", "provider-1")
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestIdempotentTogglesStillAuthenticate(t *testing.T) {
	ledger := newMemoryLedger()
	imposter := idempotentEngineAs(ledger, "provider-1", 100)

	err := imposter.GrantAccess("patient-1", "provider-1")
	require.ErrorIs(t, err, ErrAuthenticationFailure)
}
