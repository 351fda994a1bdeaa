package cryptolib

// Unavailable is the Library used when no native binding is linked in. Every
// call fails with ErrUnavailable, so issuance stops at its first step.
type Unavailable struct{}

var _ Library = Unavailable{}

func (Unavailable) GenerateSecretKey() ([]byte, error) { return nil, ErrUnavailable }

func (Unavailable) GenerateCommitmentMessage(nonce, secretKey []byte) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) CreateCredentials(secretKey, createCredentialMessages []byte) ([]byte, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ReadEuCredentials(data []byte) (*EuCredentialAttributes, error) {
	return nil, ErrUnavailable
}

func (Unavailable) ReadDomesticCredentials(data []byte) (*DomesticCredentialAttributes, error) {
	return nil, ErrUnavailable
}
