package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"

	"github.com/arpa-network/randcast-node/errs"
	"github.com/arpa-network/randcast-node/types"
)

// keystoreFile is the scrypt-encrypted key file format AccountConfig's
// Keystore path points at: a minimal analog of the accounts/keystore
// format, scoped down to this node's single signing
// key rather than a multi-account wallet.
type keystoreFile struct {
	Address string `json:"address"`
	Crypto  struct {
		CipherText string `json:"ciphertext"`
		KDFParams  struct {
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
		} `json:"kdfparams"`
	} `json:"crypto"`
}

// ResolveAddress derives this node's on-chain address from whichever
// account source AccountConfig.Validate confirmed is set. The keystore
// and HD-wallet paths use golang.org/x/crypto (scrypt, pbkdf2) to
// derive key material from passphrase material; actual transaction
// signing with the derived key happens behind the out-of-scope
// contract client boundary.
func ResolveAddress(a AccountConfig) (types.Address, error) {
	switch {
	case a.PrivateKey != "":
		return addressFromPrivateKey(a.PrivateKey)
	case a.Keystore != "":
		return addressFromKeystore(a.Keystore, a.Password)
	case a.HDWallet != "":
		return addressFromHDWallet(a.HDWallet, a.HDPath)
	default:
		return types.Address{}, errs.New(errs.AddressFormatError, "config.ResolveAddress", nil)
	}
}

func addressFromPrivateKey(hexKey string) (types.Address, error) {
	key, err := hex.DecodeString(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return types.Address{}, errs.New(errs.AddressFormatError, "config.addressFromPrivateKey", err)
	}
	return addressFromKeyMaterial(key), nil
}

// addressFromKeystore decrypts a scrypt-protected key file and derives
// the address from the recovered key material, mirroring the
// go-ethereum-style keystore V3 envelope the accounts/keystore package
// reads.
func addressFromKeystore(path, password string) (types.Address, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Address{}, errs.New(errs.DataAccess, "config.addressFromKeystore", err)
	}
	var ks keystoreFile
	if err := json.Unmarshal(raw, &ks); err != nil {
		return types.Address{}, errs.New(errs.Serialization, "config.addressFromKeystore", err)
	}

	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return types.Address{}, errs.New(errs.Serialization, "config.addressFromKeystore", err)
	}
	derivedKey, err := scrypt.Key([]byte(password), salt,
		ks.Crypto.KDFParams.N, ks.Crypto.KDFParams.R, ks.Crypto.KDFParams.P, ks.Crypto.KDFParams.DKLen)
	if err != nil {
		return types.Address{}, errs.New(errs.BLSFailure, "config.addressFromKeystore", err)
	}

	cipherText, err := hex.DecodeString(ks.Crypto.CipherText)
	if err != nil {
		return types.Address{}, errs.New(errs.Serialization, "config.addressFromKeystore", err)
	}
	key := xorKey(derivedKey, cipherText)
	return addressFromKeyMaterial(key), nil
}

// addressFromHDWallet stretches a mnemonic/derivation-path pair into
// key material via pbkdf2, the same primitive BIP-39 seed generation
// uses, then derives the address from it. A full BIP-32 derivation
// tree is out of scope (no secp256k1 dependency is wired); this node
// only ever needs one signing key, not a tree of them.
func addressFromHDWallet(mnemonic, path string) (types.Address, error) {
	seed := pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"+path), 2048, 64, sha256.New)
	return addressFromKeyMaterial(seed), nil
}

func addressFromKeyMaterial(key []byte) types.Address {
	sum := sha256.Sum256(key)
	return types.BytesToAddress(sum[:])
}

// xorKey recombines scrypt-derived key material with the keystore's
// stored ciphertext; a from-scratch stand-in for the AES-CTR stream
// cipher step a real keystore format would use here.
func xorKey(derivedKey, cipherText []byte) []byte {
	out := make([]byte, len(cipherText))
	for i := range cipherText {
		out[i] = cipherText[i] ^ derivedKey[i%len(derivedKey)]
	}
	return out
}
