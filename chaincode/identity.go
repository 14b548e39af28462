package chaincode

import "fmt"

// Authenticator proves that the transaction submitter controls a claimed
// identity. It is injected so the engine can run against a fake in tests and
// against hosts with different signature schemes.
type Authenticator interface {
	RequireIdentity(identity string) error
}

// ClientIdentity is the slice of the Fabric client identity the
// authenticator needs. Satisfied by cid.ClientIdentity.
type ClientIdentity interface {
	GetID() (string, error)
	GetAttributeValue(attrName string) (string, bool, error)
}

// certificateAuthenticator binds claimed identities to the transaction
// submitter: the userId certificate attribute when the caller was enrolled
// with one, otherwise the raw client ID.
type certificateAuthenticator struct {
	client ClientIdentity
}

func NewCertificateAuthenticator(client ClientIdentity) Authenticator {
	return &certificateAuthenticator{client: client}
}

func (a *certificateAuthenticator) RequireIdentity(identity string) error {
	callerID, found, err := a.client.GetAttributeValue("userId")
	if err != nil {
		return fmt.Errorf("%w: failed to read userId attribute: %v", ErrAuthenticationFailure, err)
	}
	if !found {
		callerID, err = a.client.GetID()
		if err != nil {
			return fmt.Errorf("%w: failed to get client ID: %v", ErrAuthenticationFailure, err)
		}
	}

	if callerID != identity {
		return fmt.Errorf("%w: caller %q cannot act as %q", ErrAuthenticationFailure, callerID, identity)
	}

	return nil
}
