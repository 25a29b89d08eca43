package main

import (
	"bytes"
	"encoding/base64"
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"photovault/internal/crypto"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup: derive the master key and publish your sharing key",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if a.state.KDF != nil {
			return errors.New("already set up; local state exists")
		}

		pw, err := promptSecret("Choose master password: ")
		if err != nil {
			return err
		}
		defer zero(pw)
		again, err := promptSecret("Repeat master password: ")
		if err != nil {
			return err
		}
		defer zero(again)
		if !bytes.Equal(pw, again) {
			return errors.New("passwords do not match")
		}

		sp, cleanup := startSpinner("Deriving master key...")
		defer cleanup()

		kdf := crypto.DefaultKDF()
		if a.cfg.MobileKDF {
			kdf = crypto.MobileKDF()
		}
		res, err := a.master.SetupWithKDF(string(pw), kdf)
		if err != nil {
			return err
		}
		a.state.KDF = &res.KDF
		a.state.Verification = base64.StdEncoding.EncodeToString(res.Verification)
		if err := a.state.save(); err != nil {
			return err
		}

		pub, err := a.shares.GenerateKeyPair()
		if err != nil {
			return err
		}
		if err := a.client.PublishPublicKey(cmd.Context(), pub); err != nil {
			a.log.Warn().Err(err).Msg("public key not published; server unreachable")
		}

		sp.FinalMSG = color.GreenString("✓") + " Vault initialized\n" +
			"  sharing public key: " + color.YellowString(pub) + "\n"
		return nil
	},
}
