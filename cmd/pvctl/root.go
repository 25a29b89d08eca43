package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"photovault/internal/audit"
	"photovault/internal/config"
	"photovault/internal/content"
	"photovault/internal/crypto"
	"photovault/internal/keystore"
	"photovault/internal/logging"
	"photovault/internal/master"
	"photovault/internal/platform"
	"photovault/internal/remote"
	"photovault/internal/share"
	"photovault/internal/storage"
	"photovault/internal/vault"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "pvctl",
	Short:         "End-to-end encrypted photo vault client",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	rootCmd.AddCommand(setupCmd, putCmd, getCmd, shareCmd, statusCmd, vaultCmd)
	vaultCmd.AddCommand(vaultCreateCmd, vaultPutCmd, vaultGetCmd, vaultRotateCmd)
}

// app wires the crypto core for one invocation. Keys derived here live
// exactly as long as the process.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	store    *keystore.Store
	master   *master.Manager
	vaults   *vault.Manager
	content  *content.Service
	shares   *share.Service
	blobs    storage.BlobStore
	client   *remote.Client
	keychain platform.Keychain
	state    *localState
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.Nop()
	if verbose {
		log = logging.NewLevel("pvctl", cfg.LogLevel)
	}

	eng := crypto.Probe()
	store := keystore.New()
	client := remote.NewClient(remote.ClientConfig{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.Timeout,
		Logger:  log,
	})
	blobs, err := storage.NewFileBlobStore(filepath.Join(cfg.CacheDir, "blobs"))
	if err != nil {
		return nil, err
	}
	state, err := loadState(filepath.Join(cfg.CacheDir, "state.json"))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		master:   master.New(eng, store, log),
		vaults: vault.New(vault.Config{
			Engine:            eng,
			Store:             store,
			Notifier:          client,
			Audit:             audit.New(),
			Logger:            log,
			MaxUnlockAttempts: cfg.MaxAttempts,
		}),
		content:  content.New(eng, store, log),
		shares:   share.New(eng, store, log),
		blobs:    blobs,
		client:   client,
		keychain: platform.NewMemKeychain(),
		state:    state,
	}, nil
}

// close drops every key the invocation derived.
func (a *app) close() {
	a.master.Clear()
	a.store.Clear()
}

// login prompts for the master password and installs the master key for
// the rest of the invocation.
func (a *app) login() error {
	if a.state.KDF == nil {
		return errors.New("not set up yet: run `pvctl setup` first")
	}
	pw, err := promptSecret("Master password: ")
	if err != nil {
		return err
	}
	defer zero(pw)

	verification, err := base64.StdEncoding.DecodeString(a.state.Verification)
	if err != nil {
		return fmt.Errorf("corrupt local state: %w", err)
	}
	return a.master.Login(string(pw), *a.state.KDF, verification)
}

// ---- local state ----

// localState is the non-secret record set the client keeps between
// invocations: KDF parameters, wrapped keys, vault records. All of it is
// safe to disclose; the server holds the authoritative copy.
type localState struct {
	path string

	KDF          *crypto.KDFParams      `json:"kdf,omitempty"`
	Verification string                 `json:"verification,omitempty"`
	Objects      map[string]string      `json:"objects,omitempty"` // object ID -> wrapped content key
	Vaults       map[string]vaultRecord `json:"vaults,omitempty"`
}

type vaultRecord struct {
	Name            string           `json:"name"`
	WrappedVaultKey string           `json:"wrapped_vault_key"`
	KDF             crypto.KDFParams `json:"kdf"`
}

func loadState(path string) (*localState, error) {
	st := &localState{
		path:    path,
		Objects: map[string]string{},
		Vaults:  map[string]vaultRecord{},
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("corrupt local state %s: %w", path, err)
	}
	return st, nil
}

func (s *localState) save() error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}

// ---- console helpers ----

func promptSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	br := bufio.NewReader(os.Stdin)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

func startSpinner(message string) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	_ = s.Color("cyan")
	if !verbose {
		s.Start()
	}
	cleanup := func() {
		if s.Active() {
			s.Stop() // prints FinalMSG
		} else if s.FinalMSG != "" {
			fmt.Print(s.FinalMSG)
		}
	}
	return s, cleanup
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
