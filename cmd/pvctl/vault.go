package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photovault/internal/remote"
	"photovault/internal/vault"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage locked vaults (independent key, own password)",
}

var vaultCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a vault protected by its own password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		pw, err := promptSecret("Vault password: ")
		if err != nil {
			return err
		}
		defer zero(pw)
		again, err := promptSecret("Repeat vault password: ")
		if err != nil {
			return err
		}
		defer zero(again)
		if !bytes.Equal(pw, again) {
			return errors.New("passwords do not match")
		}

		sp, cleanup := startSpinner("Creating vault...")
		defer cleanup()

		res, err := a.vaults.CreateWithPassword(cmd.Context(), args[0], string(pw))
		if err != nil {
			return err
		}
		a.state.Vaults[res.VaultID] = vaultRecord{
			Name:            res.Name,
			WrappedVaultKey: base64.StdEncoding.EncodeToString(res.WrappedVaultKey),
			KDF:             res.KDF,
		}
		if err := a.state.save(); err != nil {
			return err
		}
		rec := remote.VaultRecord{
			VaultID:         res.VaultID,
			Name:            res.Name,
			WrappedVaultKey: base64.StdEncoding.EncodeToString(res.WrappedVaultKey),
			KDF:             &res.KDF,
		}
		if err := a.client.RegisterVault(cmd.Context(), rec); err != nil {
			a.log.Warn().Err(err).Msg("vault not registered; server unreachable")
		}

		sp.FinalMSG = color.GreenString("✓") + " Vault " + color.YellowString(res.VaultID) + " created\n"
		return nil
	},
}

// unlockVault installs the vault key for the rest of the invocation:
// first from keychain-held session material if a backend retained any,
// otherwise by prompting for the vault password.
func unlockVault(cmd *cobra.Command, a *app, vaultID string) error {
	rec, ok := a.state.Vaults[vaultID]
	if !ok {
		return fmt.Errorf("unknown vault %s", vaultID)
	}
	if rehydrateVault(a, vaultID) {
		return nil
	}
	pw, err := promptSecret("Vault password: ")
	if err != nil {
		return err
	}
	defer zero(pw)

	wrapped, err := base64.StdEncoding.DecodeString(rec.WrappedVaultKey)
	if err != nil {
		return fmt.Errorf("corrupt local state: %w", err)
	}
	sess, err := a.vaults.UnlockWithPassword(cmd.Context(), vaultID, string(pw), wrapped, rec.KDF)
	if err != nil {
		return err
	}
	stashSession(a, vaultID, sess)
	return nil
}

// rehydrateVault re-establishes unlocked state from the keychain without a
// password prompt. With no native backend the entries never survive a
// process restart and this is a miss.
func rehydrateVault(a *app, vaultID string) bool {
	sk, err := a.keychain.Load("session-key:" + vaultID)
	if err != nil {
		return false
	}
	defer zero(sk)
	swk, err := a.keychain.Load("session-wrap:" + vaultID)
	if err != nil {
		return false
	}
	if err := a.vaults.StoreFromSession(vaultID, swk, sk); err != nil {
		a.log.Debug().Err(err).Str("vault_id", vaultID).Msg("stale session material dropped")
		_ = a.keychain.Erase("session-key:" + vaultID)
		_ = a.keychain.Erase("session-wrap:" + vaultID)
		return false
	}
	return true
}

func stashSession(a *app, vaultID string, sess *vault.Session) {
	if err := a.keychain.Store("session-key:"+vaultID, sess.SessionKey); err != nil {
		return
	}
	_ = a.keychain.Store("session-wrap:"+vaultID, sess.SessionWrappedVaultKey)
}

var vaultPutCmd = &cobra.Command{
	Use:   "put <vault-id> <file>",
	Short: "Encrypt a file into a vault",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		vaultID := args[0]
		if err := unlockVault(cmd, a, vaultID); err != nil {
			return err
		}
		defer a.vaults.Lock(cmd.Context(), vaultID)

		plaintext, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		sealed, err := a.vaults.EncryptForVault(vaultID, plaintext)
		if err != nil {
			return err
		}
		objectID := uuid.NewString()
		if err := a.blobs.Put(cmd.Context(), vaultID+"."+objectID, sealed); err != nil {
			return err
		}
		fmt.Println(color.GreenString("✓") + " Stored " + color.YellowString(objectID) + " in vault " + vaultID)
		return nil
	},
}

var vaultGetOut string

func init() {
	vaultGetCmd.Flags().StringVarP(&vaultGetOut, "out", "o", "", "output path (defaults to stdout)")
}

var vaultGetCmd = &cobra.Command{
	Use:   "get <vault-id> <object-id>",
	Short: "Decrypt a vault object",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		vaultID, objectID := args[0], args[1]
		if err := unlockVault(cmd, a, vaultID); err != nil {
			return err
		}
		defer a.vaults.Lock(cmd.Context(), vaultID)

		sealed, err := a.blobs.Get(cmd.Context(), vaultID+"."+objectID)
		if err != nil {
			return err
		}
		plaintext, err := a.vaults.DecryptForVault(vaultID, sealed)
		if err != nil {
			return errors.New("failed to decrypt: wrong key or corrupt blob")
		}
		if vaultGetOut == "" {
			_, err = os.Stdout.Write(plaintext)
			return err
		}
		return os.WriteFile(vaultGetOut, plaintext, 0o600)
	},
}

var vaultRotateCmd = &cobra.Command{
	Use:   "rotate <vault-id>",
	Short: "Change a vault's password without re-encrypting its objects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		vaultID := args[0]
		if err := unlockVault(cmd, a, vaultID); err != nil {
			return err
		}
		defer a.vaults.Lock(cmd.Context(), vaultID)

		pw, err := promptSecret("New vault password: ")
		if err != nil {
			return err
		}
		defer zero(pw)

		rot, err := a.vaults.RotatePassword(cmd.Context(), vaultID, string(pw))
		if err != nil {
			return err
		}
		rec := a.state.Vaults[vaultID]
		rec.WrappedVaultKey = base64.StdEncoding.EncodeToString(rot.WrappedVaultKey)
		rec.KDF = rot.KDF
		a.state.Vaults[vaultID] = rec
		if err := a.state.save(); err != nil {
			return err
		}
		remoteRec := remote.VaultRecord{
			VaultID:         vaultID,
			Name:            rec.Name,
			WrappedVaultKey: rec.WrappedVaultKey,
			KDF:             &rec.KDF,
		}
		if err := a.client.RegisterVault(cmd.Context(), remoteRec); err != nil {
			a.log.Warn().Err(err).Msg("rotation not uploaded; server unreachable")
		}
		fmt.Println(color.GreenString("✓") + " Vault password rotated")
		return nil
	},
}
