package ports

// Verifier defines the interface for verifying file existence.
//
//go:generate mockgen -destination=mocks/mock_verifier.go -package=mocks -source=verifier.go
type Verifier interface {
	// VerifyOutputs checks if all output paths exist relative to the given root directory.
	VerifyOutputs(root string, outputs []string) (bool, error)
}
