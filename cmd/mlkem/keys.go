package main

import (
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	hpqcpem "github.com/katzenpost/hpqc/kem/pem"
	"github.com/spf13/cobra"

	mlkem "github.com/BackendStack21/mlkem-go"
	"github.com/BackendStack21/mlkem-go/scheme"
	"github.com/BackendStack21/mlkem-go/utils"
)

const (
	publicKeySuffix  = ".kem_public.pem"
	privateKeySuffix = ".kem_private.pem"
)

func newKeygenCommand(a *app) *cobra.Command {
	var level, out, seedHex string
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Long: `Generate an ML-KEM key pair and write it as two PEM files.

With --seed the key pair is derived deterministically from a 64-byte seed
(d || z, hex encoded). Without it a fresh seed is drawn from the system
random number generator.`,
		Example: `  # Generate an ML-KEM-768 key pair as alice.kem_public.pem / alice.kem_private.pem
  mlkem keygen --out alice

  # Generate an ML-KEM-512 key pair from a fixed seed
  mlkem keygen --level 512 --out test --seed 000102...3f`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scheme(level)
			if err != nil {
				return err
			}
			pubFile, privFile := out+publicKeySuffix, out+privateKeySuffix
			if !force {
				for _, f := range []string{pubFile, privFile} {
					if _, err := os.Stat(f); err == nil {
						return fmt.Errorf("%s already exists, use --force to overwrite", f)
					}
				}
			}
			for _, f := range []string{pubFile, privFile} {
				if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}

			var (
				pk *scheme.PublicKey
				sk *scheme.PrivateKey
			)
			if seedHex != "" {
				seed, err := decodeString(seedHex)
				if err != nil {
					return err
				}
				defer utils.Zeroize(seed)
				if len(seed) != s.SeedSize() {
					return fmt.Errorf("invalid argument: seed must be %d bytes, got %d", s.SeedSize(), len(seed))
				}
				p, k := s.DeriveKeyPair(seed)
				pk, sk = p.(*scheme.PublicKey), k.(*scheme.PrivateKey)
				a.log.Notice("derived key pair from seed")
			} else {
				p, k, err := s.GenerateKeyPair()
				if err != nil {
					return err
				}
				pk, sk = p.(*scheme.PublicKey), k.(*scheme.PrivateKey)
			}
			defer sk.DecapsulationKey().Zeroize()

			if err := hpqcpem.PublicKeyToFile(pubFile, pk); err != nil {
				return err
			}
			if err := hpqcpem.PrivateKeyToFile(privFile, sk); err != nil {
				return err
			}
			a.log.Infof("wrote %s key pair to %s and %s", s.Name(), pubFile, privFile)

			fmt.Fprintf(cmd.OutOrStdout(), "public key:  %s\nprivate key: %s\n", pubFile, privFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "parameter set (512, 768, 1024)")
	cmd.Flags().StringVarP(&out, "out", "o", "mlkem", "key file name prefix")
	cmd.Flags().StringVar(&seedHex, "seed", "", "64-byte seed, hex encoded")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing key files")
	return cmd
}

func newEncapsCommand(a *app) *cobra.Command {
	var pubFile, randomness string

	cmd := &cobra.Command{
		Use:     "encaps",
		Short:   "Encapsulate a shared secret to a public key",
		Example: `  mlkem encaps --public alice.kem_public.pem`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := loadPublicKey(pubFile)
			if err != nil {
				return err
			}
			ek := pk.EncapsulationKey()

			var res *mlkem.EncapsulationResult
			if randomness != "" {
				m, err := decodeString(randomness)
				if err != nil {
					return err
				}
				a.log.Warning("using caller supplied encapsulation randomness")
				res, err = ek.EncapsulateDeterministic(m)
				utils.Zeroize(m)
				if err != nil {
					return err
				}
			} else if res, err = ek.Encapsulate(nil); err != nil {
				return err
			}
			defer utils.Zeroize(res.SharedSecret)
			a.log.Infof("encapsulated to %s key %s", ek.Params().Level, pubFile)

			fmt.Fprintf(cmd.OutOrStdout(), "ciphertext: %s\nshared_secret: %s\n",
				a.encode(res.Ciphertext), a.encode(res.SharedSecret))
			return nil
		},
	}

	cmd.Flags().StringVarP(&pubFile, "public", "p", "", "public key PEM file")
	cmd.Flags().StringVar(&randomness, "randomness", "", "32-byte encapsulation randomness, for testing only")
	_ = cmd.MarkFlagRequired("public")
	return cmd
}

func newDecapsCommand(a *app) *cobra.Command {
	var privFile, ciphertext string

	cmd := &cobra.Command{
		Use:     "decaps",
		Short:   "Recover a shared secret with a private key",
		Example: `  mlkem decaps --private alice.kem_private.pem --ciphertext 4f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := loadPrivateKey(privFile)
			if err != nil {
				return err
			}
			dk := sk.DecapsulationKey()
			defer dk.Zeroize()

			ct, err := decodeString(ciphertext)
			if err != nil {
				return err
			}
			ss, err := dk.Decapsulate(ct)
			if err != nil {
				return err
			}
			defer utils.Zeroize(ss)

			fmt.Fprintf(cmd.OutOrStdout(), "shared_secret: %s\n", a.encode(ss))
			return nil
		},
	}

	cmd.Flags().StringVarP(&privFile, "private", "k", "", "private key PEM file")
	cmd.Flags().StringVar(&ciphertext, "ciphertext", "", "ciphertext, hex or base64")
	_ = cmd.MarkFlagRequired("private")
	_ = cmd.MarkFlagRequired("ciphertext")
	return cmd
}

// schemeFromPEM reads the PEM block type, e.g. "ML-KEM-768 PUBLIC KEY", and
// returns the scheme it names.
func schemeFromPEM(path, suffix string) (*scheme.Scheme, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blk, _ := pem.Decode(b)
	if blk == nil {
		return nil, fmt.Errorf("%s: %w: no PEM block", path, mlkem.ErrFormat)
	}
	name, ok := strings.CutSuffix(blk.Type, suffix)
	if !ok {
		return nil, fmt.Errorf("%s: %w: unexpected PEM type %q", path, mlkem.ErrFormat, blk.Type)
	}
	return scheme.ByName(name)
}

func loadPublicKey(path string) (*scheme.PublicKey, error) {
	s, err := schemeFromPEM(path, " PUBLIC KEY")
	if err != nil {
		return nil, err
	}
	pk, err := hpqcpem.FromPublicPEMFile(path, s)
	if err != nil {
		return nil, err
	}
	return pk.(*scheme.PublicKey), nil
}

func loadPrivateKey(path string) (*scheme.PrivateKey, error) {
	s, err := schemeFromPEM(path, " PRIVATE KEY")
	if err != nil {
		return nil, err
	}
	sk, err := hpqcpem.FromPrivatePEMFile(path, s)
	if err != nil {
		return nil, err
	}
	return sk.(*scheme.PrivateKey), nil
}
