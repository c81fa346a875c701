package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caspernetworks/casper/src/crypto/keys"
	"github.com/spf13/cobra"
)

//NewKeygenCmd returns the command that generates a validator key-pair
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a validator key-pair",
		RunE:  keygen,
	}

	cmd.Flags().StringP("out", "o", _config.Keyfile(), "Output file for the private key")

	return cmd
}

func keygen(cmd *cobra.Command, args []string) error {
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	if _, err := os.Stat(out); err == nil {
		return fmt.Errorf("a key already exists at %s; remove it first", out)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0700); err != nil {
		return err
	}

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		return err
	}

	if err := keys.NewSimpleKeyfile(out).WriteKey(key); err != nil {
		return err
	}

	fmt.Printf("Public key: %s\n", keys.PublicKeyHex(&key.PublicKey))
	fmt.Printf("Private key written to %s\n", out)

	return nil
}
