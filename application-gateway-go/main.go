package main

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

var log = logrus.New()

// config locates the enrollment material and the peer for this client
// identity. Defaults point at the Fabric test network.
type config struct {
	mspID         string
	certPath      string
	keyPath       string
	tlsCertPath   string
	peerEndpoint  string
	gatewayPeer   string
	channelName   string
	chaincodeName string
}

func loadConfig() config {
	// A missing .env is fine; the environment and the defaults below cover it.
	_ = godotenv.Load()

	cryptoPath := getenv("CRYPTO_PATH", "../../test-network/organizations/peerOrganizations/org1.example.com")

	return config{
		mspID:         getenv("MSP_ID", "Org1MSP"),
		certPath:      getenv("CERT_PATH", cryptoPath+"/users/User1@org1.example.com/msp/signcerts/User1@org1.example.com-cert.pem"),
		keyPath:       getenv("KEY_PATH", cryptoPath+"/users/User1@org1.example.com/msp/keystore/"),
		tlsCertPath:   getenv("TLS_CERT_PATH", cryptoPath+"/peers/peer0.org1.example.com/tls/ca.crt"),
		peerEndpoint:  getenv("PEER_ENDPOINT", "localhost:7051"),
		gatewayPeer:   getenv("GATEWAY_PEER", "peer0.org1.example.com"),
		channelName:   getenv("CHANNEL_NAME", "mychannel"),
		chaincodeName: getenv("CHAINCODE_NAME", "medicalrecords"),
	}
}

func getenv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: gateway grant|revoke|access <patientID> <providerID> | audit <patientID>")
	}

	cfg := loadConfig()

	// The gRPC client connection should be shared by all Gateway connections
	// to this endpoint.
	clientConnection := newGrpcConnection(cfg)
	defer clientConnection.Close()

	id := newIdentity(cfg)
	sign := newSign(cfg)

	// Create a Gateway connection for a specific client identity.
	gw, err := client.Connect(
		id,
		client.WithSign(sign),
		client.WithClientConnection(clientConnection),
		client.WithEvaluateTimeout(5*time.Second),
		client.WithEndorseTimeout(15*time.Second),
		client.WithSubmitTimeout(5*time.Second),
		client.WithCommitStatusTimeout(1*time.Minute),
	)
	if err != nil {
		log.Fatalf("failed to connect to gateway: %v", err)
	}
	defer gw.Close()

	network := gw.GetNetwork(cfg.channelName)
	contract := network.GetContract(cfg.chaincodeName)

	switch os.Args[1] {
	case "grant":
		GrantAccess(contract, arg(2), arg(3))
	case "revoke":
		RevokeAccess(contract, arg(2), arg(3))
	case "access":
		AccessRecords(contract, arg(2), arg(3))
	case "audit":
		ViewAuditTrail(contract, arg(2))
	default:
		log.Fatalf("unknown operation %q", os.Args[1])
	}
}

func arg(i int) string {
	if len(os.Args) <= i {
		log.Fatal("usage: gateway grant|revoke|access <patientID> <providerID> | audit <patientID>")
	}
	return os.Args[i]
}

// Submit a transaction synchronously, blocking until it has been committed
// to the ledger.
func GrantAccess(contract *client.Contract, patientID, providerID string) {
	log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Info("Submit Transaction: GrantAccess")

	if _, err := contract.SubmitTransaction("GrantAccess", patientID, providerID); err != nil {
		log.Fatalf("failed to submit transaction: %v", err)
	}

	log.Info("Transaction committed successfully")
}

func RevokeAccess(contract *client.Contract, patientID, providerID string) {
	log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Info("Submit Transaction: RevokeAccess")

	if _, err := contract.SubmitTransaction("RevokeAccess", patientID, providerID); err != nil {
		log.Fatalf("failed to submit transaction: %v", err)
	}

	log.Info("Transaction committed successfully")
}

func AccessRecords(contract *client.Contract, patientID, providerID string) {
	log.WithFields(logrus.Fields{"patient": patientID, "provider": providerID}).Info("Submit Transaction: AccessRecords")

	result, err := contract.SubmitTransaction("AccessRecords", patientID, providerID)
	if err != nil {
		log.Fatalf("failed to submit transaction: %v", err)
	}

	log.Infof("Record handle: %s", formatJSON(result))
}

// Evaluate a transaction to query ledger state.
func ViewAuditTrail(contract *client.Contract, patientID string) {
	log.WithField("patient", patientID).Info("Evaluate Transaction: ViewAuditTrail")

	result, err := contract.EvaluateTransaction("ViewAuditTrail", patientID)
	if err != nil {
		log.Fatalf("failed to evaluate transaction: %v", err)
	}

	if len(result) == 0 || string(result) == "null" {
		log.Info("No access recorded for this patient yet")
		return
	}

	log.Infof("Latest access: %s", formatJSON(result))
}

func formatJSON(data []byte) string {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err != nil {
		return string(data)
	}
	return prettyJSON.String()
}

// newGrpcConnection creates a gRPC connection to the Gateway server.
func newGrpcConnection(cfg config) *grpc.ClientConn {
	certificate, err := loadCertificate(cfg.tlsCertPath)
	if err != nil {
		log.Fatalf("failed to load TLS certificate: %v", err)
	}

	certPool := x509.NewCertPool()
	certPool.AddCert(certificate)
	transportCredentials := credentials.NewClientTLSFromCert(certPool, cfg.gatewayPeer)

	connection, err := grpc.Dial(cfg.peerEndpoint, grpc.WithTransportCredentials(transportCredentials))
	if err != nil {
		log.Fatalf("failed to create gRPC connection: %v", err)
	}

	return connection
}

// newIdentity creates a client identity for this Gateway connection using an
// X.509 certificate.
func newIdentity(cfg config) *identity.X509Identity {
	certificate, err := loadCertificate(cfg.certPath)
	if err != nil {
		log.Fatalf("failed to load client certificate: %v", err)
	}

	id, err := identity.NewX509Identity(cfg.mspID, certificate)
	if err != nil {
		log.Fatalf("failed to create X.509 identity: %v", err)
	}

	return id
}

func loadCertificate(filename string) (*x509.Certificate, error) {
	certificatePEM, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file: %w", err)
	}
	return identity.CertificateFromPEM(certificatePEM)
}

// newSign creates a function that generates a digital signature from a
// message digest using a private key.
func newSign(cfg config) identity.Sign {
	files, err := os.ReadDir(cfg.keyPath)
	if err != nil {
		log.Fatalf("failed to read private key directory: %v", err)
	}

	privateKeyPEM, err := os.ReadFile(path.Join(cfg.keyPath, files[0].Name()))
	if err != nil {
		log.Fatalf("failed to read private key file: %v", err)
	}

	privateKey, err := identity.PrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		log.Fatalf("failed to parse private key: %v", err)
	}

	sign, err := identity.NewPrivateKeySign(privateKey)
	if err != nil {
		log.Fatalf("failed to create signer: %v", err)
	}

	return sign
}
