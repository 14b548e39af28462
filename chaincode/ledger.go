package chaincode

// Ledger is the slice of world-state behaviour the stores need. It is
// satisfied by shim.ChaincodeStubInterface and by the in-memory fake used in
// the tests.
type Ledger interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
	DelState(key string) error
	CreateCompositeKey(objectType string, attributes []string) (string, error)
}
