package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photovault/internal/crypto"
	"photovault/internal/remote"
)

var putThumb string

func init() {
	putCmd.Flags().StringVar(&putThumb, "thumb", "", "optional thumbnail file stored under the same key")
	getCmd.Flags().StringVarP(&getOut, "out", "o", "", "output path (defaults to stdout)")
	getCmd.Flags().BoolVar(&getThumbOnly, "thumb", false, "fetch the thumbnail instead of the object")
	shareCmd.Flags().StringVar(&shareRecipient, "to", "", "recipient user ID (public key fetched from server)")
	shareCmd.Flags().StringVar(&shareKey, "key", "", "recipient public key (base64), bypassing the server")
}

var putCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Encrypt a file under a fresh content key and cache the ciphertext",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if err := a.login(); err != nil {
			return err
		}

		plaintext, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		sp, cleanup := startSpinner("Encrypting...")
		defer cleanup()

		ck, err := a.content.Generate()
		if err != nil {
			return err
		}
		defer crypto.Zero(ck)

		objectID := uuid.NewString()
		sealed, err := a.content.EncryptObject(plaintext, ck)
		if err != nil {
			return err
		}
		if err := a.blobs.Put(cmd.Context(), objectID, sealed); err != nil {
			return err
		}
		if putThumb != "" {
			tb, err := os.ReadFile(putThumb)
			if err != nil {
				return err
			}
			sealedThumb, err := a.content.EncryptThumbnail(tb, ck)
			if err != nil {
				return err
			}
			if err := a.blobs.Put(cmd.Context(), objectID+".thumb", sealedThumb); err != nil {
				return err
			}
		}

		wrapped, err := a.content.WrapUnderMaster(ck)
		if err != nil {
			return err
		}
		a.state.Objects[objectID] = wrapped
		if err := a.state.save(); err != nil {
			return err
		}
		if err := a.client.PutWrappedContentKey(cmd.Context(), objectID, wrapped); err != nil {
			a.log.Warn().Err(err).Msg("wrapped key not uploaded; server unreachable")
		}

		sp.FinalMSG = color.GreenString("✓") + " Stored " + color.YellowString(objectID) + "\n"
		return nil
	},
}

var (
	getOut       string
	getThumbOnly bool
)

var getCmd = &cobra.Command{
	Use:   "get <object-id>",
	Short: "Decrypt a cached object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		objectID := args[0]
		wrapped, ok := a.state.Objects[objectID]
		if !ok {
			return fmt.Errorf("unknown object %s", objectID)
		}
		if err := a.login(); err != nil {
			return err
		}

		ck, err := a.content.UnwrapUnderMaster(wrapped)
		if err != nil {
			return err
		}
		defer crypto.Zero(ck)

		blobID := objectID
		if getThumbOnly {
			blobID += ".thumb"
		}
		sealed, err := a.blobs.Get(cmd.Context(), blobID)
		if err != nil {
			return err
		}

		var plaintext []byte
		if getThumbOnly {
			plaintext, err = a.content.DecryptThumbnail(sealed, ck)
		} else {
			plaintext, err = a.content.DecryptObject(sealed, ck)
		}
		if err != nil {
			return errors.New("failed to decrypt: wrong key or corrupt blob")
		}

		if getOut == "" {
			_, err = os.Stdout.Write(plaintext)
			return err
		}
		return os.WriteFile(getOut, plaintext, 0o600)
	},
}

var (
	shareRecipient string
	shareKey       string
)

var shareCmd = &cobra.Command{
	Use:   "share <object-id>",
	Short: "Re-encrypt an object's content key for another user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		objectID := args[0]
		wrapped, ok := a.state.Objects[objectID]
		if !ok {
			return fmt.Errorf("unknown object %s", objectID)
		}

		recipientKey := shareKey
		if recipientKey == "" {
			if shareRecipient == "" {
				return errors.New("either --to or --key is required")
			}
			recipientKey, err = a.client.FetchPublicKey(cmd.Context(), shareRecipient)
			if err != nil {
				return err
			}
		}

		if err := a.login(); err != nil {
			return err
		}
		ck, err := a.content.UnwrapUnderMaster(wrapped)
		if err != nil {
			return err
		}
		defer crypto.Zero(ck)

		payload, err := a.shares.EncryptForSharing(ck, recipientKey)
		if err != nil {
			return err
		}

		if shareRecipient != "" {
			rec := remote.ShareRecord{RecipientID: shareRecipient, Payload: payload}
			if err := a.client.PutShare(cmd.Context(), rec); err != nil {
				return err
			}
			fmt.Println(color.GreenString("✓") + " Shared " + objectID + " with " + shareRecipient)
			return nil
		}
		// No server target: print the payload for out-of-band delivery.
		return json.NewEncoder(os.Stdout).Encode(payload)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local state and server session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ids, err := a.blobs.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("server:        ", a.cfg.ServerURL)
		fmt.Println("session valid: ", a.client.SessionValid())
		fmt.Println("set up:        ", a.state.KDF != nil)
		fmt.Println("cached blobs:  ", len(ids))
		fmt.Println("vaults:        ", len(a.state.Vaults))
		return nil
	},
}
