package auth

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// LoginMessage is the text a wallet signs with personal_sign to prove it
// owns an address.
func LoginMessage(nonce string) string {
	return "Sign in to TaskWiser\n\nNonce: " + nonce
}

// RecoverAddress returns the checksummed address that produced sig over the
// personal_sign hash of message. Both 0/1 and 27/28 recovery ids are accepted.
func RecoverAddress(message string, sig []byte) (string, error) {
	if len(sig) != crypto.SignatureLength {
		return "", wiserr.WithDetails(wiserr.ErrInvalidSignature, map[string]string{"reason": "signature must be 65 bytes"})
	}
	s := make([]byte, len(sig))
	copy(s, sig)
	if s[crypto.RecoveryIDOffset] >= 27 {
		s[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), s)
	if err != nil {
		return "", wiserr.WithCause(wiserr.ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// Verify checks a personal_sign signature over the login message for the
// live nonce of address and consumes the nonce on success.
func (i *Issuer) Verify(ctx context.Context, address, signature string) error {
	n, err := i.store.GetNonce(ctx, address)
	if err != nil {
		return err
	}
	if n.Expired(i.now()) {
		return wiserr.ErrNonceNotFound
	}

	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return wiserr.WithCause(wiserr.ErrInvalidSignature, err)
	}
	signer, err := RecoverAddress(LoginMessage(n.Value), sig)
	if err != nil {
		return err
	}
	if !strings.EqualFold(signer, strings.TrimSpace(address)) {
		return wiserr.WithDetails(wiserr.ErrInvalidSignature, map[string]string{"signer": signer})
	}
	return i.Consume(ctx, address, n.Value)
}
