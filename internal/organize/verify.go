package organize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// maxSignatureSize bounds how much of a signature file is read. Detached
// signatures are well under a kilobyte.
const maxSignatureSize = 64 * 1024

var armorPrefix = []byte("-----BEGIN PGP SIGNATURE-----")

// ErrBadSignature wraps every signature verification failure.
var ErrBadSignature = errors.New("signature verification failed")

// LoadKeyring reads an armored or binary OpenPGP public keyring.
func LoadKeyring(path string) (openpgp.EntityList, error) {
	//nolint:gosec // G304: keyring path is user configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("reset keyring: %w", seekErr)
		}
		keyring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}
	return keyring, nil
}

// FindSignature returns the detached signature shipped next to path
// (path.sig, then path.asc), or "" when there is none.
func FindSignature(path string) string {
	for _, ext := range []string{".sig", ".asc"} {
		candidate := path + ext
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

// VerifyDetached checks sigPath as a detached signature over path.
func VerifyDetached(keyring openpgp.EntityList, path, sigPath string) error {
	//nolint:gosec // G304: signature sits next to the scanned archive
	sigFile, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	sig, err := io.ReadAll(io.LimitReader(sigFile, maxSignatureSize))
	if err != nil {
		return fmt.Errorf("read signature: %w", err)
	}

	//nolint:gosec // G304: path comes from the scanned base directory
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if bytes.HasPrefix(bytes.TrimSpace(sig), armorPrefix) {
		_, err = openpgp.CheckArmoredDetachedSignature(keyring, f, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(keyring, f, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrBadSignature, path, err)
	}
	return nil
}
