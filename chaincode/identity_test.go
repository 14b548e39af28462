package chaincode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthenticatorPrefersUserIDAttribute(t *testing.T) {
	auth := NewCertificateAuthenticator(staticIdentity{
		id:    "x509::CN=enrollment-blob",
		attrs: map[string]string{"userId": "patient-1"},
	})

	require.NoError(t, auth.RequireIdentity("patient-1"))

	// The enrollment ID no longer matches once the attribute is present.
	err := auth.RequireIdentity("x509::CN=enrollment-blob")
	require.ErrorIs(t, err, ErrAuthenticationFailure)
}

func TestAuthenticatorFallsBackToClientID(t *testing.T) {
	auth := NewCertificateAuthenticator(staticIdentity{id: "patient-1"})

	require.NoError(t, auth.RequireIdentity("patient-1"))
}

func TestAuthenticatorRejectsMismatch(t *testing.T) {
	auth := NewCertificateAuthenticator(staticIdentity{id: "provider-1"})

	err := auth.RequireIdentity("patient-1")
	require.ErrorIs(t, err, ErrAuthenticationFailure)
}
