package workflow

import (
	"fmt"

	"github.com/deploymenttheory/go-workflow-importer/internal/utils/cryptoutil"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/errors"
	"github.com/deploymenttheory/go-workflow-importer/internal/utils/jsonutil"
)

// Fingerprinter computes content digests of normalized workflows. Display
// name and activation state do not contribute to the digest.
type Fingerprinter struct {
	hasher cryptoutil.Hasher
}

// NewFingerprinter creates a Fingerprinter using the given hash algorithm
func NewFingerprinter(algorithm cryptoutil.HashAlgorithm) (*Fingerprinter, error) {
	hasher, err := cryptoutil.NewHasher(algorithm)
	if err != nil {
		return nil, err
	}
	return &Fingerprinter{hasher: hasher}, nil
}

// Algorithm reports the digest algorithm in use
func (f *Fingerprinter) Algorithm() cryptoutil.HashAlgorithm {
	return f.hasher.Algorithm()
}

// Fingerprint returns the hex digest of the workflow's canonical serialization
// with the name and active keys removed
func (f *Fingerprinter) Fingerprint(wf Workflow) (string, error) {
	reduced := make(map[string]interface{}, len(wf))
	for key, value := range wf {
		if key == KeyName || key == "active" {
			continue
		}
		reduced[key] = value
	}

	canonical, err := jsonutil.Canonical(reduced)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrFingerprintFailed, err.Error())
	}

	sum, err := f.hasher.Hash(canonical)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errors.ErrFingerprintFailed, err.Error())
	}
	return sum, nil
}
