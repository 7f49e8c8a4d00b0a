package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/BackendStack21/mlkem-go/envelope"
)

func newSealCommand(a *app) *cobra.Command {
	var pubFile, message, inFile, outFile, suiteName string

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Seal a message to a public key",
		Long: `Encapsulate a fresh shared secret to the public key, derive a symmetric
key from it and encrypt the message with an AEAD. The result is written as a
CBOR envelope. The message is taken from --message, from --in, or from
standard input.`,
		Example: `  mlkem seal --public bob.kem_public.pem --message "Hello, world!" --out msg.cbor
  cat report.pdf | mlkem seal --public bob.kem_public.pem --suite xchacha20poly1305 --out report.cbor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := loadPublicKey(pubFile)
			if err != nil {
				return err
			}
			suite, err := a.suite(suiteName)
			if err != nil {
				return err
			}

			var plaintext []byte
			switch {
			case message != "":
				plaintext = []byte(message)
			case inFile != "":
				if plaintext, err = os.ReadFile(inFile); err != nil {
					return err
				}
			default:
				if plaintext, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			env, err := envelope.Seal(pk.EncapsulationKey(), suite, plaintext, nil)
			if err != nil {
				return err
			}
			blob, err := env.Marshal()
			if err != nil {
				return err
			}
			a.log.Infof("sealed %d bytes to %s with %s", len(plaintext), env.Level, suite)

			if outFile == "" {
				fmt.Fprintln(cmd.OutOrStdout(), a.encode(blob))
				return nil
			}
			return os.WriteFile(outFile, blob, 0644)
		},
	}

	cmd.Flags().StringVarP(&pubFile, "public", "p", "", "recipient public key PEM file")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message to seal")
	cmd.Flags().StringVarP(&inFile, "in", "i", "", "read the message from this file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the envelope to this file instead of printing it")
	cmd.Flags().StringVarP(&suiteName, "suite", "s", "", "AEAD suite (aes256gcm, chacha20poly1305, xchacha20poly1305)")
	_ = cmd.MarkFlagRequired("public")
	return cmd
}

func newOpenCommand(a *app) *cobra.Command {
	var privFile, inFile, outFile string

	cmd := &cobra.Command{
		Use:     "open",
		Short:   "Open a sealed envelope with a private key",
		Example: `  mlkem open --private bob.kem_private.pem --in msg.cbor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := loadPrivateKey(privFile)
			if err != nil {
				return err
			}
			dk := sk.DecapsulationKey()
			defer dk.Zeroize()

			blob, err := os.ReadFile(inFile)
			if err != nil {
				return err
			}
			env, err := envelope.Unmarshal(blob)
			if err != nil {
				return err
			}
			plaintext, err := envelope.Open(dk, env)
			if err != nil {
				return err
			}
			a.log.Infof("opened %d bytes sealed with %s", len(plaintext), env.Suite)

			if outFile == "" {
				_, err = cmd.OutOrStdout().Write(plaintext)
				return err
			}
			return os.WriteFile(outFile, plaintext, 0600)
		},
	}

	cmd.Flags().StringVarP(&privFile, "private", "k", "", "private key PEM file")
	cmd.Flags().StringVarP(&inFile, "in", "i", "", "envelope file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the plaintext to this file instead of standard output")
	_ = cmd.MarkFlagRequired("private")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
