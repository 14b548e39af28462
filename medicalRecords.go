package main

import (
	"os"

	"github.com/Niharika22062006/Medical-Records-Access-Control/chaincode"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/sirupsen/logrus"
)

// Start-up when the chaincode is deployed.
func main() {
	contract := &chaincode.MedicalRecordsContract{
		IdempotentToggles: os.Getenv("IDEMPOTENT_TOGGLES") == "true",
	}

	recordsChaincode, err := contractapi.NewChaincode(contract)
	if err != nil {
		logrus.Fatalf("Error creating MedicalRecordsChaincode: %v", err)
	}

	if err := recordsChaincode.Start(); err != nil {
		logrus.Fatalf("Error starting MedicalRecordsChaincode: %v", err)
	}
}
