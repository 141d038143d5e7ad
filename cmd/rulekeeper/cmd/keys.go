package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lcgate/rulekeeper/internal/core/auth"
	"github.com/lcgate/rulekeeper/internal/core/config"
	"github.com/lcgate/rulekeeper/internal/core/db"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage admin API keys",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create <actor>",
	Short: "Mint a new API key for an actor",
	Long:  `Mints an API key, prints it once, and stores only its HMAC hash. The plaintext key cannot be recovered later.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysCreate,
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <api-key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRevoke,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysCreateCmd)
	keysCmd.AddCommand(keysRevokeCmd)
}

func runKeysCreate(cmd *cobra.Command, args []string) error {
	actor := args[0]

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set RK_HMAC_SECRET environment variable)")
	}

	// Any configured secret can sign new keys; take the first.
	var secretID string
	var secret []byte
	for id, s := range secrets {
		secretID, secret = id, s
		break
	}

	randomData := make([]byte, 32)
	if _, err := rand.Read(randomData); err != nil {
		return fmt.Errorf("failed to generate key material: %w", err)
	}

	key := auth.FormatAPIKey(secretID, hex.EncodeToString(randomData))
	keyHash := auth.ComputeHMAC(secret, key)

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	keyID := uuid.Must(uuid.NewV7()).String()
	if _, err := queries.Exec("insert-api-key", keyID, keyHash, actor, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	fmt.Printf("api_key_id: %s\nactor:      %s\napi_key:    %s\n", keyID, actor, key)
	fmt.Println("store this key now; it will not be shown again")
	return nil
}

func runKeysRevoke(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	result, err := queries.Exec("revoke-api-key", time.Now().UTC(), args[0])
	if err != nil {
		return fmt.Errorf("failed to revoke key: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("no active key with id %s", args[0])
	}
	fmt.Println("key revoked")
	return nil
}
